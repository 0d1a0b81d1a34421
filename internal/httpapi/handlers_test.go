package httpapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/service"
	"nainai/backend/internal/store/memory"
	"nainai/backend/internal/store/storetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	handler http.Handler
	repo    *memory.Store
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	repo := memory.New()
	svc := service.New(repo, nil)
	return testAPI{handler: New(svc, "*").Handler(), repo: repo}
}

func (api testAPI) do(t *testing.T, method string, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthAndRequestID(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "till-7")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, "till-7", rec.Header().Get("X-Request-ID"))
}

func TestPreflight(t *testing.T) {
	api := newTestAPI(t)
	rec, _ := api.do(t, http.MethodOptions, "/api/sales", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIngredientLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/ingredients", map[string]any{
		"name": "Sugar", "stock_quantity": "5", "unit": "kg", "low_stock_threshold": "1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ingredient 'Sugar' added", body["message"])
	id := int64(body["ingredient"].(map[string]any)["id"].(float64))

	rec, body = api.do(t, http.MethodPost, "/api/ingredients", map[string]any{
		"name": "Sugar", "stock_quantity": "1", "unit": "kg",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ingredient 'Sugar' already exists", body["message"])

	rec, body = api.do(t, http.MethodPost, "/api/ingredients/"+strconv.FormatInt(id, 10)+"/spoilage", map[string]any{"quantity": "4.5"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stock updated", body["message"])

	rec, _ = api.do(t, http.MethodGet, "/api/ingredients/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var low []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &low))
	require.Len(t, low, 1)
	assert.Equal(t, "Sugar", low[0]["name"])

	rec, _ = api.do(t, http.MethodGet, "/api/ingredients/"+strconv.FormatInt(id, 10)+"/movements?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movements []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements, 1)
	assert.Equal(t, "spoilage", movements[0]["movement_type"])
	assert.Equal(t, "-4.5", movements[0]["quantity_change"])
}

func TestValidationFailures(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/ingredients", map[string]any{"unit": "kg"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Name")

	rec, body = api.do(t, http.MethodPost, "/api/ingredients/abc/purchase", map[string]any{"quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", body["error"])

	rec, _ = api.do(t, http.MethodPost, "/api/ingredients/1/purchase", map[string]any{"quantity": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = api.do(t, http.MethodPost, "/api/ingredients/99/adjust", map[string]any{"delta": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ingredient not found", body["message"])
}

func TestSellFlow(t *testing.T) {
	api := newTestAPI(t)
	product, _, _ := storetest.MilkTea(t, api.repo, "1.0")

	rec, body := api.do(t, http.MethodPost, "/api/sales", map[string]any{"product_id": product.ID, "quantity": 10})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "insufficient stock: Milk", body["message"])

	rec, body = api.do(t, http.MethodPost, "/order", map[string]any{"product_name": "Milk Tea", "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sale completed, total: 25.00", body["message"])

	rec, body = api.do(t, http.MethodPost, "/order", map[string]any{"product_name": "Milk Tea", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity must be a positive integer", body["message"])

	rec, body = api.do(t, http.MethodPost, "/order", map[string]any{"product_name": "Espresso", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", body["message"])

	rec, body = api.do(t, http.MethodGet, "/api/reports/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["order_count"])
	assert.Equal(t, "25", body["total_revenue"])
	assert.NotEmpty(t, body["date"])

	rec, _ = api.do(t, http.MethodGet, "/api/reports/ranking", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ranking []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	require.Len(t, ranking, 1)
	assert.Equal(t, float64(2), ranking[0]["total_quantity"])
}

func TestSellWithoutRecipeIsUnprocessable(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Hot Water", "price": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["product"].(map[string]any)["id"]

	rec, body = api.do(t, http.MethodPost, "/api/sales", map[string]any{"product_id": id, "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "product has no recipe and cannot be sold", body["message"])
}

func TestStorageFaultIsHidden(t *testing.T) {
	api := newTestAPI(t)
	product, _, _ := storetest.MilkTea(t, api.repo, "2.0")
	api.repo.FailOn(memory.OpInsertSale, assert.AnError)

	rec, body := api.do(t, http.MethodPost, "/api/sales", map[string]any{"product_id": product.ID, "quantity": 1})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["message"])
}

func TestProductsAttributesAndRecipe(t *testing.T) {
	api := newTestAPI(t)
	product, tea, milk := storetest.MilkTea(t, api.repo, "2.0")
	base := "/api/products/" + strconv.FormatInt(product.ID, 10)

	rec, body := api.do(t, http.MethodGet, "/api/products?name=Milk%20Tea", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Milk Tea", body["name"])

	rec, _ = api.do(t, http.MethodGet, "/api/products?name=Nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = api.do(t, http.MethodPost, base+"/attributes", map[string]any{"attribute_name": "taste", "attribute_value": "creamy"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "attribute 'taste: creamy' added", body["message"])

	rec, body = api.do(t, http.MethodPut, base+"/recipe", map[string]any{"entries": []map[string]any{
		{"ingredient_id": tea.ID, "quantity_needed": "0.2"},
		{"ingredient_id": tea.ID, "quantity_needed": "0.1"},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = api.do(t, http.MethodPut, base+"/recipe", map[string]any{"entries": []map[string]any{
		{"ingredient_id": milk.ID, "quantity_needed": "0.3"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recipe saved", body["message"])

	rec, body = api.do(t, http.MethodGet, base+"/recipe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "Milk", lines[0].(map[string]any)["ingredient_name"])

	rec, _ = api.do(t, http.MethodGet, "/api/products/999/recipe", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecipeExport(t *testing.T) {
	api := newTestAPI(t)
	storetest.MilkTea(t, api.repo, "2.0")

	rec, _ := api.do(t, http.MethodGet, "/api/recipes/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "recipes.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"product id", "product name", "ingredient name", "quantity needed", "unit"}, records[0])
	assert.Equal(t, "Black Tea", records[1][2])
}

func TestRecommend(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/recommend", map[string]any{"preference": "creamy"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no products available to recommend", body["message"])

	rec, _ = api.do(t, http.MethodPost, "/recommend", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
