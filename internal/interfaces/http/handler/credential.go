package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/vault"
)

// CredentialStore is the vault surface the handler needs
type CredentialStore interface {
	Save(ctx context.Context, input vault.SaveInput) error
	Deactivate(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) error
	OffboardTenant(ctx context.Context, tenantID uuid.UUID) error
}

// AdapterInvalidator drops pooled adapter instances after credential changes
type AdapterInvalidator interface {
	Invalidate(tenantID uuid.UUID, code marketplace.Code)
	ClearTenant(tenantID uuid.UUID)
}

// CredentialHandler manages tenant marketplace credentials
type CredentialHandler struct {
	BaseHandler
	store       CredentialStore
	invalidator AdapterInvalidator
	logger      *zap.Logger
}

// NewCredentialHandler creates a CredentialHandler
func NewCredentialHandler(store CredentialStore, invalidator AdapterInvalidator, logger *zap.Logger) *CredentialHandler {
	return &CredentialHandler{
		store:       store,
		invalidator: invalidator,
		logger:      logger,
	}
}

// RegisterRoutes registers the credential routes
func (h *CredentialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants/:tenant_id")
	{
		tenants.POST("/credentials/:marketplace", h.Save)
		tenants.DELETE("/credentials/:marketplace", h.Deactivate)
		tenants.DELETE("/credentials", h.Offboard)
	}
}

// SaveCredentialsRequest is the save/rotate request body. Secrets arrive in
// plaintext over TLS and are encrypted before they touch storage.
type SaveCredentialsRequest struct {
	APIKey     string `json:"api_key" binding:"required"`
	APISecret  string `json:"api_secret"`
	Identifier string `json:"identifier"`
	KeyName    string `json:"key_name"`
}

// Save stores or rotates the tenant's credentials for a marketplace
func (h *CredentialHandler) Save(c *gin.Context) {
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

	var req SaveCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.store.Save(c.Request.Context(), vault.SaveInput{
		TenantID:    tenantID,
		Marketplace: code,
		APIKey:      req.APIKey,
		APISecret:   req.APISecret,
		Identifier:  req.Identifier,
		KeyName:     req.KeyName,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	// Any pooled adapter still runs on the previous credentials
	h.invalidator.Invalidate(tenantID, code)

	h.logger.Info("credentials saved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("marketplace", code.String()),
	)
	h.Created(c, gin.H{"marketplace": code, "tenant_id": tenantID})
}

// Deactivate soft-deletes the tenant's credentials for a marketplace
func (h *CredentialHandler) Deactivate(c *gin.Context) {
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

	if err := h.store.Deactivate(c.Request.Context(), tenantID, code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidator.Invalidate(tenantID, code)

	h.logger.Info("credentials deactivated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("marketplace", code.String()),
	)
	h.NoContent(c)
}

// Offboard soft-deletes every credential record the tenant owns and drops
// all of its pooled adapters
func (h *CredentialHandler) Offboard(c *gin.Context) {
	tenantID, err := pathTenantID(c)
	if err != nil {
		h.BadRequest(c, "tenant_id must be a UUID")
		return
	}

	if err := h.store.OffboardTenant(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidator.ClearTenant(tenantID)

	h.logger.Info("tenant offboarded", zap.String("tenant_id", tenantID.String()))
	h.NoContent(c)
}
