package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dispensingapp "github.com/medisync/backend/internal/application/dispensing"
)

// DispensingHandler exposes the pharmacist dispensing screen: medicine
// search, batch selection, cart and commit.
type DispensingHandler struct {
	BaseHandler
	dispensingService *dispensingapp.DispensingService
}

// NewDispensingHandler creates a new dispensing handler
func NewDispensingHandler(dispensingService *dispensingapp.DispensingService) *DispensingHandler {
	return &DispensingHandler{dispensingService: dispensingService}
}

// SelectBatchRequest picks a batch for the medicine currently on screen
type SelectBatchRequest struct {
	BatchID string `json:"batch_id" binding:"required,uuid"`
}

// AddToCartRequest sets the quantity for the selected batch
type AddToCartRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// RegisterRoutes registers dispensing routes
func (h *DispensingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dispensing := rg.Group("/dispensing")
	{
		dispensing.GET("/medicines", h.SearchMedicines)
		dispensing.GET("/medicines/:name/batches", h.GetBatches)
		dispensing.POST("/medicines/:name/select", h.SelectBatch)
		dispensing.GET("/cart", h.GetCart)
		dispensing.POST("/cart", h.AddToCart)
		dispensing.DELETE("/cart", h.ClearCart)
		dispensing.POST("/cart/commit", h.Commit)
	}
}

// SearchMedicines returns medicine names with sellable stock matching the
// search term. An empty term lists everything in stock.
func (h *DispensingHandler) SearchMedicines(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	names, err := h.dispensingService.SearchMedicines(c.Request.Context(), op, c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"medicines": names})
}

// GetBatches lists a medicine's batches ordered by expiry and applies the
// default earliest-expiry selection to the operator's session.
func (h *DispensingHandler) GetBatches(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	view, err := h.dispensingService.GetBatchesForMedicine(c.Request.Context(), op, c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// SelectBatch records the operator's batch pick for the medicine on screen.
func (h *DispensingHandler) SelectBatch(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req SelectBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	view, err := h.dispensingService.SelectBatch(c.Request.Context(), op, c.Param("name"), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// GetCart returns the operator's current cart
func (h *DispensingHandler) GetCart(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	view, err := h.dispensingService.GetCart(c.Request.Context(), op)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// AddToCart adds the selected batch to the cart at the given quantity.
func (h *DispensingHandler) AddToCart(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.dispensingService.AddToCart(c.Request.Context(), op, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// ClearCart empties the operator's cart
func (h *DispensingHandler) ClearCart(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.dispensingService.ClearCart(c.Request.Context(), op); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Commit dispenses every cart line. Lines commit independently, so the
// response reports per-line outcomes rather than a single pass/fail.
func (h *DispensingHandler) Commit(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.dispensingService.ConfirmAndCommit(c.Request.Context(), op)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
