package models

import "fmt"

const (
	ProductsCollection = "Products"
	ProfilesCollection = "Profiles"
)

// Product is a document in the Products collection. Key is assigned by the store.
type Product struct {
	Key         string  `json:"_key,omitempty"`
	Seller      string  `json:"seller"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Profile is a document in the Profiles collection, keyed by Name.
// No route reads it yet.
type Profile struct {
	Key     string `json:"_key,omitempty"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

// PriceRange is an exclusive price interval: Min < price < Max.
type PriceRange struct {
	Min float64
	Max float64
}

func NewPriceRange(lo, hi float64) (PriceRange, error) {
	if lo < 0 {
		return PriceRange{}, fmt.Errorf("price range: min %v is negative", lo)
	}
	if hi <= lo {
		return PriceRange{}, fmt.Errorf("price range: max %v must exceed min %v", hi, lo)
	}
	return PriceRange{Min: lo, Max: hi}, nil
}

// ErrorResponse is the body of every 4xx/5xx response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}
