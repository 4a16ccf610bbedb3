package handler

import (
	"context"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/gin-gonic/gin"
)

// SessionService exposes the cached GSP credentials
type SessionService interface {
	VerifySession(ctx context.Context) (*einvoice.SessionInfo, error)
	ResetCredentials(ctx context.Context) error
}

// SessionHandler handles /einvoice/session
type SessionHandler struct {
	BaseHandler
	svc SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Verify ensures a valid credential pair exists, authenticating if needed,
// and reports its expiry. Tokens are never returned.
func (h *SessionHandler) Verify(c *gin.Context) {
	info, err := h.svc.VerifySession(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// Reset drops the cached credentials; the next call authenticates afresh.
func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.svc.ResetCredentials(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
