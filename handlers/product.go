package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-svc/api"
	"catalog-svc/middleware"
	"catalog-svc/models"
	"catalog-svc/schema"
	"catalog-svc/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var QueryParams = []schema.Schema{
	{
		Name:        "parameters",
		In:          schema.InBody,
		Type:        schema.Object,
		Required:    true,
		Description: "Define the minimal and the maximal price of returned products.",
		Fields: []schema.Schema{
			{Name: "min", Type: schema.Number, Required: true, Positive: true},
			{Name: "max", Type: schema.Number, Required: true, Positive: true, GreaterThan: "min"},
		},
	},
}

type ProductHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewProductHandler(s store.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		store:  s,
		logger: logger,
	}
}

// Query returns every product priced strictly between min and max.
func (h *ProductHandler) Query(ctx context.Context, p api.Params) (any, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "QueryProducts")
	defer span.End()

	rng, err := models.NewPriceRange(p.Float("parameters", "min"), p.Float("parameters", "max"))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("price.min", rng.Min),
		attribute.Float64("price.max", rng.Max),
	)

	docs, err := h.store.Find(ctx, store.RangeQuery{
		Collection: models.ProductsCollection,
		Field:      "price",
		Min:        rng.Min,
		Max:        rng.Max,
	})
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to query products",
			zap.String("trace_id", middleware.GetTraceID(ctx)),
			zap.Error(err))
		return nil, err
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		var product models.Product
		if err := json.Unmarshal(d.Body, &product); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("decode product %s: %w", d.Key, err)
		}
		product.Key = d.Key
		products = append(products, product)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	middleware.ObserveQueryResults(len(products))
	return products, nil
}
