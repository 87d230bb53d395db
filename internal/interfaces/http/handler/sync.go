package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appsync "github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/application/sync"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// SyncEngine is the batch engine surface the handler needs
type SyncEngine interface {
	UpdatePricesAndStock(ctx context.Context, tenantID uuid.UUID, code marketplace.Code, items []marketplace.BatchItem) (*marketplace.BatchResult, error)
	SyncAcrossMarketplaces(ctx context.Context, tenantID uuid.UUID, items []marketplace.BatchItem, codes []marketplace.Code) []appsync.FanOutResult
}

// SyncHandler triggers batch price/stock pushes
type SyncHandler struct {
	BaseHandler
	engine SyncEngine
	logger *zap.Logger
}

// NewSyncHandler creates a SyncHandler
func NewSyncHandler(engine SyncEngine, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers the sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants/:tenant_id")
	{
		tenants.POST("/sync/:marketplace", h.SyncMarketplace)
		tenants.POST("/sync", h.SyncAll)
	}
}

// SyncRequest is the per-marketplace batch request body
type SyncRequest struct {
	Items []marketplace.BatchItem `json:"items" binding:"required,min=1,dive"`
}

// SyncMarketplace pushes the batch to one marketplace
func (h *SyncHandler) SyncMarketplace(c *gin.Context) {
	tenantID, err := pathTenantID(c)
	if err != nil {
		h.BadRequest(c, "tenant_id must be a UUID")
		return
	}
	code, err := pathMarketplace(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.engine.UpdatePricesAndStock(c.Request.Context(), tenantID, code, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// FanOutSyncRequest is the cross-marketplace batch request body
type FanOutSyncRequest struct {
	Items        []marketplace.BatchItem `json:"items" binding:"required,min=1,dive"`
	Marketplaces []string                `json:"marketplaces" binding:"required,min=1"`
}

// SyncAll pushes the batch to several marketplaces concurrently. One
// marketplace failing shows up in its own result entry; the response is
// always 200 with per-marketplace outcomes.
func (h *SyncHandler) SyncAll(c *gin.Context) {
	tenantID, err := pathTenantID(c)
	if err != nil {
		h.BadRequest(c, "tenant_id must be a UUID")
		return
	}

	var req FanOutSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	codes := make([]marketplace.Code, 0, len(req.Marketplaces))
	for _, raw := range req.Marketplaces {
		code := marketplace.Code(raw)
		if !code.IsValid() {
			h.BadRequest(c, "unknown marketplace: "+raw)
			return
		}
		codes = append(codes, code)
	}

	results := h.engine.SyncAcrossMarketplaces(c.Request.Context(), tenantID, req.Items, codes)
	h.Success(c, gin.H{"results": results})
}
