package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/medisync/backend/internal/application/inventory"
	"github.com/medisync/backend/internal/interfaces/http/middleware"
)

// InventoryHandler exposes the branch stock view, receiving and direct
// per-product dispensing.
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// DispenseProductRequest is the direct dispense request body
type DispenseProductRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.GET("", h.GetBranchInventory)
		inventory.POST("/batches", middleware.RequireInventoryManagement(), h.ReceiveBatch)
		inventory.POST("/products/:id/dispense", h.DispenseProduct)
	}
}

// GetBranchInventory returns every batch the operator's store holds,
// classified by expiry severity.
func (h *InventoryHandler) GetBranchInventory(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	view, err := h.inventoryService.GetBranchInventory(c.Request.Context(), op.StoreID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// ReceiveBatch books a delivered batch into the operator's store. An
// existing (medicine, batch number) pair is topped up instead of duplicated.
func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var input inventoryapp.ReceiveBatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	row, err := h.inventoryService.ReceiveBatch(c.Request.Context(), op.StoreID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, row)
}

// DispenseProduct decrements a single product's stock without going through
// the cart. Rejects rather than clamps when stock is insufficient.
func (h *InventoryHandler) DispenseProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req DispenseProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.inventoryService.DispenseProduct(c.Request.Context(), productID, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"product_id": productID, "quantity": req.Quantity})
}
