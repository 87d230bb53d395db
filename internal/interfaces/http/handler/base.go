package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/vault"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// pathTenantID parses the tenant_id path parameter
func pathTenantID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("tenant_id"))
}

// pathMarketplace parses the marketplace path parameter
func pathMarketplace(c *gin.Context) (marketplace.Code, error) {
	code := marketplace.Code(c.Param("marketplace"))
	if !code.IsValid() {
		return "", marketplace.ErrInvalidMarketplaceCode
	}
	return code, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts gateway and domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var cfgErr *marketplace.ConfigError
	if errors.As(err, &cfgErr) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeCredentialsIncomplete),
			dto.NewErrorResponseWithDetails(
				dto.ErrCodeCredentialsIncomplete,
				"credential set is missing required fields",
				cfgErr.Missing,
			))
		return
	}

	var apiErr *marketplace.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimited():
			h.Error(c, http.StatusTooManyRequests, dto.ErrCodeVendorRateLimited, apiErr.Message)
		case apiErr.IsAuthFailure():
			h.Error(c, http.StatusBadGateway, dto.ErrCodeVendorAuth, apiErr.Message)
		default:
			h.Error(c, http.StatusBadGateway, dto.ErrCodeVendorError, apiErr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, marketplace.ErrCredentialsNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, marketplace.ErrInvalidTenantID),
		errors.Is(err, marketplace.ErrInvalidMarketplaceCode),
		errors.Is(err, marketplace.ErrAdapterNotSupported),
		errors.Is(err, marketplace.ErrEmptyBatch),
		errors.Is(err, vault.ErrInvalidRawKey):
		h.BadRequest(c, err.Error())
	default:
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "an unexpected error occurred")
	}
}
