package handler

import (
	"context"

	app "github.com/erp/einvoice/internal/application/einvoice"
	"github.com/gin-gonic/gin"
)

// PartyService registers seller units and customers
type PartyService interface {
	CreateSellerUnit(ctx context.Context, req app.PartyRequest) (*app.PartyResponse, error)
	GetSellerUnit(ctx context.Context, code string) (*app.PartyResponse, error)
	CreateCustomer(ctx context.Context, req app.PartyRequest) (*app.PartyResponse, error)
	GetCustomer(ctx context.Context, code string) (*app.PartyResponse, error)
}

// PartyHandler handles seller unit and customer endpoints
type PartyHandler struct {
	BaseHandler
	svc PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(svc PartyService) *PartyHandler {
	return &PartyHandler{svc: svc}
}

// CreateSellerUnit handles POST /units
func (h *PartyHandler) CreateSellerUnit(c *gin.Context) {
	var req app.PartyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CreateSellerUnit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetSellerUnit handles GET /units/:code
func (h *PartyHandler) GetSellerUnit(c *gin.Context) {
	resp, err := h.svc.GetSellerUnit(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateCustomer handles POST /customers
func (h *PartyHandler) CreateCustomer(c *gin.Context) {
	var req app.PartyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCustomer handles GET /customers/:code
func (h *PartyHandler) GetCustomer(c *gin.Context) {
	resp, err := h.svc.GetCustomer(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
