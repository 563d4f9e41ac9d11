package handlers

import (
	"net/http"

	"catalog-svc/api"
)

func Register(r *api.Router, products *ProductHandler) {
	r.Handle(http.MethodGet, "/hello/:name", HelloParams, Hello)
	r.Handle(http.MethodPost, "/query", QueryParams, products.Query)
}
