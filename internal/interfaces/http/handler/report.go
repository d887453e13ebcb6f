package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/medisync/backend/internal/application/report"
)

// ReportHandler exposes the expiry-monitoring report
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ExpiryReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *reportapp.ExpiryReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/expiring", h.GetExpiringReport)
	}
}

// GetExpiringReport returns batches inside the monitoring window, filtered
// by an optional search term and sorted by the requested key.
func (h *ReportHandler) GetExpiringReport(c *gin.Context) {
	op, err := operatorFromClaims(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query reportapp.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.reportService.GetExpiringReport(c.Request.Context(), op.StoreID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
