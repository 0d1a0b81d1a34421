// Package httpapi serves the shop over JSON HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/export"
	"nainai/backend/internal/service"
)

type API struct {
	service       *service.Service
	allowedOrigin string
	log           *zap.Logger
}

func New(svc *service.Service, allowedOrigin string) *API {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &API{
		service:       svc,
		allowedOrigin: allowedOrigin,
		log:           zap.L().Named("http"),
	}
}

func (a *API) Handler() http.Handler {
	r := gin.New()
	r.Use(requestID())
	r.Use(requestLogger(a.log))
	r.Use(recovery(a.log))
	r.Use(headers(a.allowedOrigin))

	r.GET("/healthz", a.handleHealth)
	r.POST("/order", a.handleOrder)
	r.POST("/recommend", a.handleRecommend)

	api := r.Group("/api")

	ingredients := api.Group("/ingredients")
	ingredients.GET("", a.handleListIngredients)
	ingredients.POST("", a.handleAddIngredient)
	ingredients.GET("/low-stock", a.handleLowStock)
	ingredients.POST("/:id/adjust", a.handleAdjustStock)
	ingredients.POST("/:id/purchase", a.handlePurchase)
	ingredients.POST("/:id/spoilage", a.handleSpoilage)
	ingredients.GET("/:id/movements", a.handleMovements)

	products := api.Group("/products")
	products.GET("", a.handleListProducts)
	products.POST("", a.handleAddProduct)
	products.GET("/:id/attributes", a.handleListAttributes)
	products.POST("/:id/attributes", a.handleAddAttribute)
	products.GET("/:id/recipe", a.handleGetRecipe)
	products.PUT("/:id/recipe", a.handleSaveRecipe)

	api.GET("/recipes/export", a.handleExportRecipes)
	api.POST("/sales", a.handleSell)

	reports := api.Group("/reports")
	reports.GET("/today", a.handleTodayReport)
	reports.GET("/ranking", a.handleRankingReport)
	reports.GET("/recent", a.handleRecentReport)
	reports.GET("/inventory", a.handleInventoryReport)

	return r
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleListIngredients(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.ListIngredients(c.Request.Context()))
}

func (a *API) handleAddIngredient(c *gin.Context) {
	var req domain.IngredientCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.AddIngredient(c.Request.Context(), req)
	a.writeOutcome(c, http.StatusCreated, res, res.Result, err)
}

func (a *API) handleLowStock(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.LowStock(c.Request.Context()))
}

func (a *API) handleAdjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.StockAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.AdjustStock(c.Request.Context(), id, req.Delta)
	a.writeOutcome(c, http.StatusOK, res, res.Result, err)
}

func (a *API) handlePurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.StockQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.RecordPurchase(c.Request.Context(), id, req.Quantity)
	a.writeOutcome(c, http.StatusOK, res, res.Result, err)
}

func (a *API) handleSpoilage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.StockQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.RecordSpoilage(c.Request.Context(), id, req.Quantity)
	a.writeOutcome(c, http.StatusOK, res, res.Result, err)
}

func (a *API) handleMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit := parsePositiveLimit(c.Query("limit"), 50, 500)
	c.JSON(http.StatusOK, a.service.Movements(c.Request.Context(), id, limit))
}

func (a *API) handleListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	if name, ok := c.GetQuery("name"); ok {
		product, found := a.service.FindProductByName(ctx, name)
		if !found {
			writeError(c, http.StatusNotFound, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
		return
	}
	c.JSON(http.StatusOK, a.service.ListProducts(ctx))
}

func (a *API) handleAddProduct(c *gin.Context) {
	var req domain.ProductCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.AddProduct(c.Request.Context(), req)
	a.writeOutcome(c, http.StatusCreated, res, res.Result, err)
}

func (a *API) handleListAttributes(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.service.Attributes(c.Request.Context(), id))
}

func (a *API) handleAddAttribute(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.AttributeCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.SetAttribute(c.Request.Context(), id, req)
	a.writeOutcome(c, http.StatusCreated, res, res.Result, err)
}

func (a *API) handleGetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	product, found := a.service.GetProduct(ctx, id)
	if !found {
		writeError(c, http.StatusNotFound, "product not found")
		return
	}
	c.JSON(http.StatusOK, domain.ProductRecipe{Product: product, Lines: a.service.Recipe(ctx, id)})
}

func (a *API) handleSaveRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.RecipeSaveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.SaveRecipe(c.Request.Context(), id, req.Entries)
	a.writeOutcome(c, http.StatusOK, res, res, err)
}

func (a *API) handleExportRecipes(c *gin.Context) {
	book := a.service.RecipeBook(c.Request.Context())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="recipes.csv"`)
	c.Status(http.StatusOK)
	if err := export.Recipes(c.Writer, book); err != nil {
		a.log.Error("recipe export failed", zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
	}
}

func (a *API) handleSell(c *gin.Context) {
	var req domain.SaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.Sell(c.Request.Context(), req.ProductID, req.Quantity)
	a.writeOutcome(c, http.StatusCreated, res, res.Result, err)
}

func (a *API) handleOrder(c *gin.Context) {
	var req domain.OrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := a.service.SellByName(c.Request.Context(), req.ProductName, req.Quantity)
	a.writeOutcome(c, http.StatusCreated, res, res.Result, err)
}

func (a *API) handleRecommend(c *gin.Context) {
	var req domain.RecommendationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := a.service.Recommend(c.Request.Context(), req.Preference)
	if err != nil {
		writeError(c, statusFor(err), resp.Message)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type todayReport struct {
	Date string `json:"date"`
	domain.SalesSummary
}

func (a *API) handleTodayReport(c *gin.Context) {
	c.JSON(http.StatusOK, todayReport{
		Date:         a.service.Today().Format("2006-01-02"),
		SalesSummary: a.service.TodaySummary(c.Request.Context()),
	})
}

func (a *API) handleRankingReport(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.ProductRanking(c.Request.Context()))
}

func (a *API) handleRecentReport(c *gin.Context) {
	limit := parsePositiveLimit(c.Query("limit"), 10, 100)
	c.JSON(http.StatusOK, a.service.RecentSales(c.Request.Context(), limit))
}

func (a *API) handleInventoryReport(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.InventoryReport(c.Request.Context()))
}
