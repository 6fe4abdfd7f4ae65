package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/service"
)

func (h *Handler) createCaptureEvent(c *gin.Context) {
	var payload capture.EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if payload.EventTime.IsZero() {
		payload.EventTime = time.Now()
	}

	result, err := h.captures.ProcessIncomingEvent(c.Request.Context(), payload, h.opts.DefaultSourceModel)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		h.log.Error().Err(err).Msg("failed to process capture event")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "ok",
		"entry_id":    result.EntryID,
		"vehicle_ref": result.VehicleRef,
		"direction":   result.Direction,
		"closed":      result.Closed,
	})
}

func (h *Handler) listPlates(c *gin.Context) {
	plateQuery := strings.TrimSpace(c.Query("plate"))
	if plateQuery == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate parameter is required"))
		return
	}

	plates, err := h.captures.FindPlates(c.Request.Context(), plateQuery)
	if err != nil {
		h.degrade(c, err, []service.PlateInfo{})
		return
	}

	c.JSON(http.StatusOK, successResponse(plates))
}

func (h *Handler) listCaptures(c *gin.Context) {
	locationID, ok := optionalUUID(c, "location_id")
	if !ok {
		return
	}
	q := service.EntryQuery{
		LocationID: locationID,
		Plate:      strings.TrimSpace(c.Query("plate")),
		From:       strings.TrimSpace(c.Query("from")),
		To:         strings.TrimSpace(c.Query("to")),
	}

	if l := c.Query("limit"); l != "" {
		if parsed, err := parseInt(l); err == nil && parsed > 0 {
			q.Limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := parseInt(o); err == nil && parsed >= 0 {
			q.Offset = parsed
		}
	}

	entries, err := h.captures.FindEntries(c.Request.Context(), q)
	if err != nil {
		h.degrade(c, err, []capture.Entry{})
		return
	}

	c.JSON(http.StatusOK, successResponse(entries))
}
