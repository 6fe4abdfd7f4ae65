package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/pricing"
	"vehicle-ticket-service/internal/service"
)

func (h *Handler) listTickets(c *gin.Context) {
	var f ticket.Filter

	locationID, ok := optionalUUID(c, "location_id")
	if !ok {
		return
	}
	f.LocationID = locationID

	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if raw := strings.TrimSpace(c.Query(key)); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, errorResponse("invalid "+key+" time format"))
				return
			}
			*dst = &t
		}
	}
	if s := c.Query("status"); s != "" {
		status := ticket.ApprovalStatus(s)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, errorResponse("invalid status"))
			return
		}
		f.ApprovalStatus = &status
	}
	if m := c.Query("payment_mode"); m != "" {
		mode := ticket.PaymentMode(m)
		if !mode.Valid() {
			c.JSON(http.StatusBadRequest, errorResponse("invalid payment_mode"))
			return
		}
		f.PaymentMode = &mode
	}
	f.PlateLike = strings.TrimSpace(c.Query("plate"))

	f.Limit = 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := parseInt(l); err == nil && parsed > 0 && parsed <= 500 {
			f.Limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := parseInt(o); err == nil && parsed >= 0 {
			f.Offset = parsed
		}
	}

	views, err := h.tickets.List(c.Request.Context(), f)
	if err != nil {
		h.degrade(c, err, []service.TicketView{})
		return
	}
	c.JSON(http.StatusOK, successResponse(views))
}

func (h *Handler) getTicket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, successResponse(service.NewTicketView(*t)))
}

func (h *Handler) createTicket(c *gin.Context) {
	h.submit(c, "create", h.tickets.Create)
}

func (h *Handler) checkoutTicket(c *gin.Context) {
	h.submit(c, "checkout", h.tickets.Checkout)
}

func (h *Handler) submit(c *gin.Context, op string, fn func(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error)) {
	var d ticket.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	t, err := fn(c.Request.Context(), staffIDFrom(c), d)
	if err != nil {
		h.log.Debug().Err(err).Str("op", op).Str("plate", d.VehiclePlate).Msg("ticket submit failed")
		h.handleError(c, err, d)
		return
	}
	c.JSON(http.StatusCreated, successResponse(service.NewTicketView(*t)))
}

func (h *Handler) quoteTicket(c *gin.Context) {
	var d ticket.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	quote, err := h.tickets.Quote(c.Request.Context(), d)
	if err != nil {
		if quote != nil {
			h.handleError(c, err, quote)
			return
		}
		h.handleError(c, err, d)
		return
	}
	c.JSON(http.StatusOK, successResponse(quote))
}

func (h *Handler) approveTicket(c *gin.Context) {
	h.transition(c, h.tickets.Approve)
}

func (h *Handler) rejectTicket(c *gin.Context) {
	h.transition(c, h.tickets.Reject)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := fn(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, successResponse(service.NewTicketView(*t)))
}

type settleRequest struct {
	Method            ticket.PaymentMode `json:"method" binding:"required"`
	PaymentAccountRef *uuid.UUID         `json:"payment_account_ref,omitempty"`
}

func (h *Handler) settleTicket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	res, err := h.tickets.Settle(c.Request.Context(), id, req.Method, req.PaymentAccountRef)
	if err != nil {
		h.handleError(c, err, req)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"ticket":  service.NewTicketView(*res.Ticket),
		"account": res.Account,
		"payable": res.Payable,
	}))
}

func (h *Handler) editTicket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch ticket.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	reopen := c.Query("reopen") == "true"
	if reopen && !isAdmin(c) {
		c.JSON(http.StatusForbidden, errorResponse("only admins can reopen tickets"))
		return
	}

	t, err := h.tickets.Edit(c.Request.Context(), id, patch, reopen)
	if err != nil {
		h.handleError(c, err, patch)
		return
	}
	c.JSON(http.StatusOK, successResponse(service.NewTicketView(*t)))
}

func (h *Handler) deleteTicket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tickets.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) catalogOptions(c *gin.Context) {
	sel := pricing.Selection{
		Category:    ticket.ParseSelectedCategory(c.Query("category")),
		VehicleType: strings.TrimSpace(c.Query("vehicle_type")),
		Brand:       strings.TrimSpace(c.Query("brand")),
		Model:       strings.TrimSpace(c.Query("model")),
	}
	if services := c.QueryArray("service"); len(services) > 0 {
		sel.Services = services
	}

	valid, opts, err := h.tickets.Options(c.Request.Context(), sel)
	if err != nil {
		h.degrade(c, err, gin.H{"selection": sel, "options": pricing.Options{}})
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"selection": valid,
		"options":   opts,
	}))
}

func (h *Handler) listPaymentAccounts(c *gin.Context) {
	locationID, ok := optionalUUID(c, "location_id")
	if !ok {
		return
	}
	accounts, err := h.tickets.PaymentAccounts(c.Request.Context(), locationID)
	if err != nil {
		h.degrade(c, err, []ticket.PaymentAccount{})
		return
	}
	c.JSON(http.StatusOK, successResponse(accounts))
}
