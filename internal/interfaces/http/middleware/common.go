package middleware

import (
	"net/http"

	"github.com/erp/einvoice/internal/infrastructure/logger"
	"github.com/erp/einvoice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"
	// MaxRequestIDLength bounds caller supplied request IDs
	MaxRequestIDLength = 128
)

// RequestID assigns every request an ID, reusing the caller's X-Request-ID
// when present, and stores it in the gin and request contexts.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if len(requestID) > MaxRequestIDLength {
			requestID = requestID[:MaxRequestIDLength]
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(logger.GinContextKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, falling back to the header
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinContextKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// Secure sets conservative security headers on every response
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// NotFound answers unknown routes with the standard envelope
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", GetRequestID(c)))
	}
}

// PanicResponse is the Recovery callback answering 500 with the standard envelope
func PanicResponse(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
}
