package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/history"
	"vehicle-ticket-service/internal/pricing"
	"vehicle-ticket-service/internal/service"
)

type TicketService interface {
	Options(ctx context.Context, sel pricing.Selection) (pricing.Selection, pricing.Options, error)
	Quote(ctx context.Context, d ticket.Draft) (*service.DraftQuote, error)
	Create(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error)
	Checkout(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error)
	Approve(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error)
	Reject(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error)
	Settle(ctx context.Context, id uuid.UUID, method ticket.PaymentMode, accountRef *uuid.UUID) (*service.SettleResult, error)
	Edit(ctx context.Context, id uuid.UUID, patch ticket.Patch, reopen bool) (*ticket.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error)
	List(ctx context.Context, f ticket.Filter) ([]service.TicketView, error)
	PaymentAccounts(ctx context.Context, locationID *uuid.UUID) ([]ticket.PaymentAccount, error)
}

type CaptureService interface {
	ProcessIncomingEvent(ctx context.Context, payload capture.EventPayload, defaultSourceModel string) (*capture.ProcessResult, error)
	FindPlates(ctx context.Context, plateQuery string) ([]service.PlateInfo, error)
	FindEntries(ctx context.Context, q service.EntryQuery) ([]capture.Entry, error)
}

type HistoryService interface {
	Lookup(ctx context.Context, plate string, locationID *uuid.UUID) (*service.Visits, error)
	Autofill(ctx context.Context, d ticket.Draft) (ticket.Draft, *history.Profile, error)
}

type ReconcileService interface {
	Compare(ctx context.Context, locationID uuid.UUID, day time.Time, trigger string) (*service.Comparison, error)
}

type StaffService interface {
	UpdateCredentials(ctx context.Context, id uuid.UUID, in service.CredentialsUpdate) error
}

var (
	_ TicketService    = (*service.TicketService)(nil)
	_ CaptureService   = (*service.CaptureService)(nil)
	_ HistoryService   = (*service.HistoryService)(nil)
	_ ReconcileService = (*service.ReconcileService)(nil)
	_ StaffService     = (*service.StaffService)(nil)
)

type Options struct {
	DefaultSourceModel string
	Location           *time.Location
}

type Handler struct {
	tickets   TicketService
	captures  CaptureService
	history   HistoryService
	reconcile ReconcileService
	staff     StaffService
	opts      Options
	log       zerolog.Logger
}

func NewHandler(
	tickets TicketService,
	captures CaptureService,
	historySvc HistoryService,
	reconcile ReconcileService,
	staff StaffService,
	opts Options,
	log zerolog.Logger,
) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Handler{
		tickets:   tickets,
		captures:  captures,
		history:   historySvc,
		reconcile: reconcile,
		staff:     staff,
		opts:      opts,
		log:       log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/captures/events", h.createCaptureEvent)
	}

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/tickets", h.listTickets)
		protected.GET("/tickets/:id", h.getTicket)
		protected.POST("/tickets", h.createTicket)
		protected.POST("/tickets/checkout", h.checkoutTicket)
		protected.POST("/tickets/quote", h.quoteTicket)
		protected.POST("/tickets/:id/approve", h.approveTicket)
		protected.POST("/tickets/:id/reject", h.rejectTicket)
		protected.POST("/tickets/:id/settle", h.settleTicket)
		protected.PATCH("/tickets/:id", h.editTicket)

		protected.GET("/catalog/options", h.catalogOptions)
		protected.GET("/payment-accounts", h.listPaymentAccounts)

		protected.GET("/history", h.lookupHistory)
		protected.POST("/history/autofill", h.autofill)

		protected.GET("/captures", h.listCaptures)
		protected.GET("/captures/plates", h.listPlates)

		protected.GET("/reconciliation", h.getReconciliation)
	}

	admin := r.Group("/api/v1")
	admin.Use(authMiddleware, RequireRole(RoleAdmin))
	{
		admin.DELETE("/tickets/:id", h.deleteTicket)
		admin.PUT("/admin/staff/:id/credentials", h.updateStaffCredentials)
	}
}

// handleError maps service and domain errors onto status codes. body, when
// set, is echoed back so the client can keep what it submitted.
func (h *Handler) handleError(c *gin.Context, err error, body interface{}) {
	status, resp := h.errorBody(err)
	if body != nil {
		resp["draft"] = body
	}
	c.JSON(status, resp)
}

func (h *Handler) errorBody(err error) (int, gin.H) {
	var (
		validation *ticket.ValidationError
		state      *ticket.StateError
		store      *ticket.StoreError
	)
	switch {
	case errors.As(err, &validation):
		resp := errorResponse(validation.Error())
		resp["fields"] = validation.Fields
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &state):
		resp := errorResponse(state.Error())
		resp["state"] = state.State
		return http.StatusConflict, resp
	case errors.Is(err, service.ErrDuplicateSubmit):
		return http.StatusTooManyRequests, errorResponse(err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse(err.Error())
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, errorResponse(err.Error())
	case errors.As(err, &store):
		switch store.Kind {
		case ticket.StoreNotFound:
			return http.StatusNotFound, errorResponse("not found")
		case ticket.StorePermissionDenied:
			return http.StatusForbidden, errorResponse("permission denied")
		case ticket.StoreUnavailable:
			return http.StatusServiceUnavailable, errorResponse("store unavailable, try again")
		case ticket.StoreConflict:
			return http.StatusConflict, errorResponse("conflicting write, reload and retry")
		}
	}
	h.log.Error().Err(err).Msg("handler error")
	return http.StatusInternalServerError, errorResponse("internal error")
}

// degrade answers a failed read with empty data and a warning, except for
// errors the caller has to fix.
func (h *Handler) degrade(c *gin.Context, err error, empty interface{}) {
	var (
		validation *ticket.ValidationError
		store      *ticket.StoreError
	)
	if errors.Is(err, service.ErrInvalidInput) || errors.As(err, &validation) ||
		(errors.As(err, &store) && store.Kind == ticket.StoreNotFound) {
		h.handleError(c, err, nil)
		return
	}
	h.log.Warn().Err(err).Str("path", c.FullPath()).Msg("read degraded")
	_, body := h.errorBody(err)
	c.JSON(http.StatusOK, gin.H{
		"data":    empty,
		"warning": body["error"],
	})
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+key))
		return nil, false
	}
	return &id, true
}
