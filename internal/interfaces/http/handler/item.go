package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ItemHandler handles catalog item API endpoints
type ItemHandler struct {
	BaseHandler
	itemService *invapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *invapp.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Unit            string          `json:"unit"`
	MinQuantity     decimal.Decimal `json:"min_quantity"`
	MaxQuantity     decimal.Decimal `json:"max_quantity"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		Type:            string(item.Type),
		Unit:            item.Unit,
		MinQuantity:     item.MinQuantity,
		MaxQuantity:     item.MaxQuantity,
		ReorderQuantity: item.ReorderQuantity,
		IsActive:        item.IsActive,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// RegisterRoutes registers item routes on the given group
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	items.POST("", h.Create)
	items.GET("", h.List)
	items.GET("/:id", h.Get)
	items.PUT("/:id", h.Update)
}

// Create creates a catalog item
func (h *ItemHandler) Create(c *gin.Context) {
	var req invapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOperatorID(c)

	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toItemResponse(item))
}

// List returns catalog items matching the filter. Supports search over name
// and SKU, plus type and is_active filters.
func (h *ItemHandler) List(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		h.BadRequest(c, "invalid list parameters")
		return
	}
	if itemType := c.Query("type"); itemType != "" {
		filter.Filters["type"] = itemType
	}
	if isActive := c.Query("is_active"); isActive != "" {
		filter.Filters["is_active"] = isActive == "true"
	}

	page, err := h.itemService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ItemResponse, 0, len(page.Items))
	for _, item := range page.Items {
		responses = append(responses, toItemResponse(item))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Get returns a catalog item by id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	item, err := h.itemService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toItemResponse(item))
}

// Update updates a catalog item
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req invapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toItemResponse(item))
}
