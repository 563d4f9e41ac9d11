package handlers

import (
	"context"

	"catalog-svc/api"
	"catalog-svc/schema"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "catalog-service"

var HelloParams = []schema.Schema{
	{
		Name:        "name",
		In:          schema.InPath,
		Type:        schema.String,
		Required:    true,
		Description: "The name of the user to greet",
	},
}

// Hello greets the user named in the path. No database interaction.
func Hello(ctx context.Context, p api.Params) (any, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "Hello")
	defer span.End()

	name := p.String("name")
	span.SetAttributes(attribute.Int("name.length", len(name)))
	return "Hello " + name + "!", nil
}
