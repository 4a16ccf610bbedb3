// Package handler implements the HTTP handlers of the e-invoice gateway API.
package handler

import (
	"errors"
	"net/http"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/erp/einvoice/internal/interfaces/http/dto"
	"github.com/erp/einvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

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

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BindJSON binds the request body into req and answers 400 on failure.
// It reports whether the handler may continue.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// HandleError converts service errors to HTTP responses. E-invoice
// failures keep their upstream details, domain errors map by code and
// anything else is an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	// Recorded for the request log.
	_ = c.Error(err)
	requestID := middleware.GetRequestID(c)

	if e, ok := einvoice.AsError(err); ok {
		h.handleEInvoiceError(c, e, requestID)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		message := domainErr.Message
		if code == dto.ErrCodeInternal {
			message = "An unexpected error occurred"
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

func (h *BaseHandler) handleEInvoiceError(c *gin.Context, e *einvoice.Error, requestID string) {
	var resp dto.Response
	switch e.Kind {
	case einvoice.KindConfiguration:
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodeNotConfigured, e.Message, requestID)
		resp.Error.Missing = e.Missing
	case einvoice.KindUpstreamTransport:
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodeUpstreamUnavailable, e.Message, requestID)
	case einvoice.KindUpstreamBusiness:
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodeUpstreamRejected, e.Message, requestID)
		resp.Error.UpstreamCode = e.Code
	case einvoice.KindPersistence:
		// The IRN exists upstream; return it so the caller can reconcile.
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodePersistenceFailed, e.Message, requestID)
		resp.Data = e.Result
	default:
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID)
	}
	c.JSON(dto.GetHTTPStatus(resp.Error.Code), resp)
}
