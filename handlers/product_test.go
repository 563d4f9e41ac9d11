package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-svc/api"
	"catalog-svc/models"
	"catalog-svc/seed"
	"catalog-svc/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	_ "modernc.org/sqlite"
)

// fakeStore records Find calls and answers from a fixed product list.
type fakeStore struct {
	products []models.Product
	err      error
	queries  []store.RangeQuery
}

func (f *fakeStore) HasCollection(context.Context, string) (bool, error) { return true, nil }
func (f *fakeStore) CreateCollection(context.Context, string) error      { return nil }
func (f *fakeStore) Save(context.Context, string, string, any) (string, error) {
	return "", errors.New("read-only")
}

func (f *fakeStore) Find(_ context.Context, q store.RangeQuery) ([]store.Document, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var docs []store.Document
	for i, p := range f.products {
		if p.Price > q.Min && p.Price < q.Max {
			body, _ := json.Marshal(p)
			docs = append(docs, store.Document{Key: string(rune('a' + i)), Body: body})
		}
	}
	return docs, nil
}

func setupProductTest(t *testing.T, s store.Store) *gin.Engine {
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Register(api.NewRouter(engine, logger), NewProductHandler(s, logger))
	return engine
}

func postQuery(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeProducts(t *testing.T, w *httptest.ResponseRecorder) []models.Product {
	t.Helper()
	var products []models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("Failed to decode body %q: %v", w.Body.String(), err)
	}
	return products
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

var sampleProducts = []models.Product{
	{Seller: "Alice", Title: "TV Station", Price: 129.00},
	{Seller: "Alice", Title: "Pair of shoes", Price: 29.00},
}

func TestProductHandler_Query_Success(t *testing.T) {
	fs := &fakeStore{products: sampleProducts}
	router := setupProductTest(t, fs)

	w := postQuery(router, `{"min":20,"max":50}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	products := decodeProducts(t, w)
	if len(products) != 1 || products[0].Title != "Pair of shoes" {
		t.Errorf("Expected only the shoes, got %+v", products)
	}
	if products[0].Key == "" {
		t.Error("Expected product key to be set")
	}

	want := store.RangeQuery{Collection: "Products", Field: "price", Min: 20, Max: 50}
	if len(fs.queries) != 1 || fs.queries[0] != want {
		t.Errorf("Expected query %+v, got %+v", want, fs.queries)
	}
}

func TestProductHandler_Query_EmptyResult(t *testing.T) {
	router := setupProductTest(t, &fakeStore{products: sampleProducts})

	w := postQuery(router, `{"min":500,"max":600}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", w.Body.String())
	}
}

func TestProductHandler_Query_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"min zero", `{"min":0,"max":10}`, "min"},
		{"min negative", `{"min":-1,"max":10}`, "min"},
		{"max zero", `{"min":1,"max":0}`, "max"},
		{"max below min", `{"min":50,"max":20}`, "max"},
		{"max equals min", `{"min":20,"max":20}`, "max"},
		{"min missing", `{"max":20}`, "min"},
		{"empty body", ``, "parameters"},
		{"malformed json", `{"min":`, "parameters"},
		{"array body", `[1,2]`, "parameters"},
		{"statement in min", `{"min":"(FOR p IN Products REMOVE p IN Products RETURN 1)","max":10}`, "min"},
		{"statement in max", `{"min":1,"max":"0; DELETE FROM \"Products\""}`, "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStore{products: sampleProducts}
			router := setupProductTest(t, fs)

			w := postQuery(router, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			if resp := decodeError(t, w); resp.Field != tt.field || resp.Error == "" {
				t.Errorf("Expected error on field %q, got %+v", tt.field, resp)
			}
			if len(fs.queries) != 0 {
				t.Errorf("Expected store not to be queried, got %d queries", len(fs.queries))
			}
		})
	}
}

func TestProductHandler_Query_StoreError(t *testing.T) {
	fs := &fakeStore{err: &store.Error{Op: "find", Collection: "Products", Err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}}
	router := setupProductTest(t, fs)

	w := postQuery(router, `{"min":1,"max":2}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Errorf("Store error leaked to client: %s", w.Body.String())
	}
	if resp := decodeError(t, w); resp.Error != "Internal server error" {
		t.Errorf("Expected generic error, got %+v", resp)
	}
}

func TestProductHandler_Query_SeededSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	s, err := store.NewSQLStore(db, store.DriverSQLite)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := seed.New(s, zaptest.NewLogger(t), seed.Defaults()...).Run(context.Background()); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	router := setupProductTest(t, s)

	tests := []struct {
		body   string
		titles []string
	}{
		{`{"min":20,"max":50}`, []string{"Pair of shoes"}},
		{`{"min":0.1,"max":1000}`, []string{"TV Station", "Pair of shoes"}},
		{`{"min":500,"max":600}`, nil},
	}

	for _, tt := range tests {
		w := postQuery(router, tt.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", tt.body, http.StatusOK, w.Code)
		}

		got := map[string]bool{}
		for _, p := range decodeProducts(t, w) {
			got[p.Title] = true
		}
		if len(got) != len(tt.titles) {
			t.Errorf("%s: expected %v, got %v", tt.body, tt.titles, got)
		}
		for _, title := range tt.titles {
			if !got[title] {
				t.Errorf("%s: missing %q", tt.body, title)
			}
		}
	}
}
