package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-inventory-ledger/internal/feed"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, feedURL string) *fiber.App {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := zerolog.Nop()

	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	tm := repository.NewTxManager(db)

	ledger := service.NewLedgerService(tm, txRepo, nil)
	catalog := service.NewCatalogService(tm, productRepo, feed.NewClient(feedURL, time.Second), nil, log)

	return New(Handlers{
		Products:     handler.NewProductHandler(catalog, log),
		Transactions: handler.NewTransactionHandler(ledger, log),
		Dashboard:    handler.NewDashboardHandler(service.NewDashboardService(txRepo, 10), log),
		Health:       handler.NewHealthHandler(db),
	}, log)
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func createProduct(t *testing.T, app *fiber.App, sku string, price float64) {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"sku": sku, "title": "Product " + sku, "image": "https://img/" + sku, "price": price,
	})
	status, _ := do(t, app, http.MethodPost, "/api/products", string(body))
	require.Equal(t, http.StatusOK, status)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")
	status, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestProductRoutes(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")

	status, body := do(t, app, http.MethodPost, "/api/products",
		`{"sku":"SKU-1","title":"Lamp","image":"https://img/1","price":10.5,"description":"warm"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SKU-1", body["sku"])
	assert.Equal(t, 10.5, body["price"])
	assert.Equal(t, float64(0), body["stock"])

	status, body = do(t, app, http.MethodGet, "/api/products/SKU-1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lamp", body["title"])

	status, body = do(t, app, http.MethodGet, "/api/products?search=lamp", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["totalPages"])

	status, body = do(t, app, http.MethodGet, "/api/products/NOPE", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", body["error"])

	status, body = do(t, app, http.MethodPost, "/api/products", `{"sku":"SKU-2","title":"x","image":"y"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Validation failed")

	status, _ = do(t, app, http.MethodPost, "/api/products", `{"sku":`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodDelete, "/api/products/SKU-1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Product deleted", body["message"])

	status, _ = do(t, app, http.MethodDelete, "/api/products/SKU-1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTransactionRoutes(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")
	createProduct(t, app, "SKU-1", 10)

	status, body := do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1","qty":5}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(50), body["amount"])
	id := int(body["id"].(float64))

	status, body = do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1","qty":-8}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient stock", body["error"])

	status, body = do(t, app, http.MethodGet, "/api/products/SKU-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), body["stock"])

	status, _ = do(t, app, http.MethodPost, "/api/transactions", `{"sku":"GHOST","qty":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, app, http.MethodPost, "/api/transactions", `{"sku":"GHOST","qty":-1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient stock", body["error"])

	status, body = do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1","qty":9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Validation failed")

	status, _ = do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	path := "/api/transactions/" + strconv.Itoa(id)

	status, body = do(t, app, http.MethodPut, path, `{"sku":"SKU-1","qty":3}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(30), body["amount"])

	status, body = do(t, app, http.MethodGet, "/api/transactions/id/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Product SKU-1", body["title"])

	status, body = do(t, app, http.MethodGet, "/api/transactions?limit=5", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["totalPages"])

	status, body = do(t, app, http.MethodDelete, "/api/products/SKU-1", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.NotEmpty(t, body["error"])

	status, _ = do(t, app, http.MethodGet, "/api/transactions/id/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, "/api/transactions/999", `{"sku":"SKU-1","qty":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodGet, "/api/transactions/id/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTransactionsBySKU(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")
	createProduct(t, app, "SKU-1", 1)
	do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1","qty":2}`)
	do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1","qty":-1}`)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/sku/SKU-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, float64(2), history[0]["qty"])
	assert.Equal(t, float64(-1), history[1]["qty"])
}

func TestImportRoute(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":1,"title":"Mascara","thumbnail":"https://cdn/1","price":9.99,"description":"d"},
			{"id":2,"title":"Lipstick","thumbnail":"https://cdn/2","price":4}
		]}`))
	}))
	defer upstream.Close()

	app := newTestApp(t, upstream.URL)

	status, body := do(t, app, http.MethodPost, "/api/products/import", "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["imported"])

	status, body = do(t, app, http.MethodPost, "/api/products/import", "")
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["imported"])
	assert.Equal(t, float64(2), data["skipped"])
}

func TestImportRoute_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	app := newTestApp(t, upstream.URL)
	status, body := do(t, app, http.MethodPost, "/api/products/import", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.NotEmpty(t, body["error"])
}

func TestDashboardRoutes(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")
	createProduct(t, app, "SKU-1", 2)
	do(t, app, http.MethodPost, "/api/transactions", `{"sku":"SKU-1","qty":4}`)

	status, body := do(t, app, http.MethodGet, "/api/dashboard/stats", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total_products"])
	assert.Equal(t, float64(8), body["total_valuation"])
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")
	status, body := do(t, app, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestDocumentation(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/documentation", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/documentation/index.html", resp.Header.Get("Location"))

	status, doc := do(t, app, http.MethodGet, "/documentation/doc.json", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2.0", doc["swagger"])

	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	for _, p := range []string{"/api/products", "/api/products/{sku}", "/api/products/import", "/api/transactions", "/api/transactions/{id}"} {
		assert.Contains(t, paths, p)
	}
}
