package seed

import "catalog-svc/models"

// Defaults returns the sample collections installed on first boot.
func Defaults() []Collection {
	return []Collection{
		{
			Name: models.ProductsCollection,
			Records: []Record{
				{Doc: models.Product{
					Seller:      "Alice",
					Title:       "TV Station",
					Description: "A TV station in original packing. Bought end of last year.",
					Price:       129.00,
				}},
				{Doc: models.Product{
					Seller:      "Alice",
					Title:       "Pair of shoes",
					Description: "A well used pair of shoes. Color: black. Size: 37",
					Price:       29.00,
				}},
			},
		},
		{
			Name: models.ProfilesCollection,
			Records: []Record{
				{Key: "Alice", Doc: models.Profile{Name: "Alice", Credits: 1000}},
			},
		},
	}
}
