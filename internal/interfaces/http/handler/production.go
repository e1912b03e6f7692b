package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	prodapp "github.com/horyco/backend/internal/application/production"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/shopspring/decimal"
)

// ProductionHandler handles production order and recipe API endpoints
type ProductionHandler struct {
	BaseHandler
	productionService *prodapp.ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(productionService *prodapp.ProductionService) *ProductionHandler {
	return &ProductionHandler{productionService: productionService}
}

// ProductionOrderResponse represents a production order in API responses
type ProductionOrderResponse struct {
	ID              uuid.UUID            `json:"id"`
	OrderNumber     string               `json:"order_number"`
	WarehouseID     uuid.UUID            `json:"warehouse_id"`
	OutputItemID    uuid.UUID            `json:"output_item_id"`
	RecipeID        *uuid.UUID           `json:"recipe_id,omitempty"`
	Status          string               `json:"status"`
	PlannedQuantity decimal.Decimal      `json:"planned_quantity"`
	ActualQuantity  *decimal.Decimal     `json:"actual_quantity,omitempty"`
	YieldUnitCost   decimal.Decimal      `json:"yield_unit_cost"`
	Notes           string               `json:"notes,omitempty"`
	Ingredients     []IngredientResponse `json:"ingredients"`
	StartedAt       *time.Time           `json:"started_at,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	CancelledAt     *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// IngredientResponse is one ingredient line of a production order response
type IngredientResponse struct {
	ID               uuid.UUID        `json:"id"`
	ItemID           uuid.UUID        `json:"item_id"`
	PlannedQuantity  decimal.Decimal  `json:"planned_quantity"`
	ActualQuantity   *decimal.Decimal `json:"actual_quantity,omitempty"`
	ConsumedQuantity decimal.Decimal  `json:"consumed_quantity"`
	ConsumedUnitCost decimal.Decimal  `json:"consumed_unit_cost"`
}

func toProductionOrderResponse(o *production.ProductionOrder) ProductionOrderResponse {
	ingredients := make([]IngredientResponse, 0, len(o.Ingredients))
	for i := range o.Ingredients {
		ing := &o.Ingredients[i]
		ingredients = append(ingredients, IngredientResponse{
			ID:               ing.ID,
			ItemID:           ing.ItemID,
			PlannedQuantity:  ing.PlannedQuantity,
			ActualQuantity:   ing.ActualQuantity,
			ConsumedQuantity: ing.ConsumedQuantity,
			ConsumedUnitCost: ing.ConsumedUnitCost,
		})
	}
	return ProductionOrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		WarehouseID:     o.WarehouseID,
		OutputItemID:    o.OutputItemID,
		RecipeID:        o.RecipeID,
		Status:          string(o.Status),
		PlannedQuantity: o.PlannedQuantity,
		ActualQuantity:  o.ActualQuantity,
		YieldUnitCost:   o.YieldUnitCost,
		Notes:           o.Notes,
		Ingredients:     ingredients,
		StartedAt:       o.StartedAt,
		CompletedAt:     o.CompletedAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// RecipeResponse represents a recipe in API responses
type RecipeResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	OutputItemID   uuid.UUID            `json:"output_item_id"`
	OutputQuantity decimal.Decimal      `json:"output_quantity"`
	Lines          []RecipeLineResponse `json:"lines"`
	IsActive       bool                 `json:"is_active"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// RecipeLineResponse is one ingredient line of a recipe response
type RecipeLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	ItemID            uuid.UUID       `json:"item_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	WasteFactor       decimal.Decimal `json:"waste_factor"`
	EffectiveQuantity decimal.Decimal `json:"effective_quantity"`
}

func toRecipeResponse(r *production.Recipe) RecipeResponse {
	lines := make([]RecipeLineResponse, 0, len(r.Lines))
	for i := range r.Lines {
		line := &r.Lines[i]
		lines = append(lines, RecipeLineResponse{
			ID:                line.ID,
			ItemID:            line.ItemID,
			Quantity:          line.Quantity,
			WasteFactor:       line.WasteFactor,
			EffectiveQuantity: line.EffectiveQuantity(),
		})
	}
	return RecipeResponse{
		ID:             r.ID,
		Name:           r.Name,
		OutputItemID:   r.OutputItemID,
		OutputQuantity: r.OutputQuantity,
		Lines:          lines,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RegisterRoutes registers production routes on the given group
func (h *ProductionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/production-orders")
	orders.POST("", h.Create)
	orders.POST("/from-recipe", h.CreateFromRecipe)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)
	orders.POST("/:id/start", h.Start)
	orders.POST("/:id/complete", h.Complete)
	orders.POST("/:id/cancel", h.Cancel)

	recipes := rg.Group("/recipes")
	recipes.POST("", h.CreateRecipe)
	recipes.GET("", h.ListRecipes)
	recipes.GET("/:id", h.GetRecipe)
	recipes.GET("/:id/cost", h.RecipeCost)
}

// Create creates a planned production order with explicit ingredients
func (h *ProductionHandler) Create(c *gin.Context) {
	var req prodapp.CreateProductionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOperatorID(c)

	order, err := h.productionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductionOrderResponse(order))
}

// CreateFromRecipe plans a production order from a recipe
func (h *ProductionHandler) CreateFromRecipe(c *gin.Context) {
	var req prodapp.CreateFromRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOperatorID(c)

	order, err := h.productionService.CreateFromRecipe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductionOrderResponse(order))
}

// List returns production orders matching the filter
func (h *ProductionHandler) List(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		h.BadRequest(c, "invalid list parameters")
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}

	page, err := h.productionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductionOrderResponse, 0, len(page.Items))
	for _, order := range page.Items {
		responses = append(responses, toProductionOrderResponse(order))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Get returns a production order by id
func (h *ProductionHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.productionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductionOrderResponse(order))
}

// Start begins production, consuming ingredients from stock
func (h *ProductionHandler) Start(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req prodapp.StartProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.OperatorID == nil {
		if operatorID := getOperatorID(c); operatorID != uuid.Nil {
			req.OperatorID = &operatorID
		}
	}

	order, err := h.productionService.Start(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductionOrderResponse(order))
}

// Complete finishes production, yielding the output at derived cost
func (h *ProductionHandler) Complete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req prodapp.CompleteProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.OperatorID == nil {
		if operatorID := getOperatorID(c); operatorID != uuid.Nil {
			req.OperatorID = &operatorID
		}
	}

	order, err := h.productionService.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductionOrderResponse(order))
}

// Cancel abandons a production order, reversing any consumption
func (h *ProductionHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	req := prodapp.CancelProductionRequest{}
	if operatorID := getOperatorID(c); operatorID != uuid.Nil {
		req.OperatorID = &operatorID
	}

	order, err := h.productionService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductionOrderResponse(order))
}

// CreateRecipe creates a recipe
func (h *ProductionHandler) CreateRecipe(c *gin.Context) {
	var req prodapp.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	recipe, err := h.productionService.CreateRecipe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRecipeResponse(recipe))
}

// ListRecipes returns recipes matching the filter
func (h *ProductionHandler) ListRecipes(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		h.BadRequest(c, "invalid list parameters")
		return
	}
	if isActive := c.Query("is_active"); isActive != "" {
		filter.Filters["is_active"] = isActive == "true"
	}

	page, err := h.productionService.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RecipeResponse, 0, len(page.Items))
	for _, recipe := range page.Items {
		responses = append(responses, toRecipeResponse(recipe))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// GetRecipe returns a recipe by id
func (h *ProductionHandler) GetRecipe(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	recipe, err := h.productionService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRecipeResponse(recipe))
}

// RecipeCost returns the recipe's batch cost at a warehouse's current
// ingredient averages
func (h *ProductionHandler) RecipeCost(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "warehouse_id must be a valid UUID")
		return
	}

	cost, err := h.productionService.RecipeCost(c.Request.Context(), id, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cost)
}
