package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/export"
	"vehicle-ticket-service/internal/service"
)

func (h *Handler) lookupHistory(c *gin.Context) {
	plate := strings.TrimSpace(c.Query("plate"))
	locationID, ok := optionalUUID(c, "location_id")
	if !ok {
		return
	}

	visits, err := h.history.Lookup(c.Request.Context(), plate, locationID)
	if err != nil {
		if visits == nil {
			visits = &service.Visits{Plate: plate}
		}
		h.degrade(c, err, visits)
		return
	}
	c.JSON(http.StatusOK, successResponse(visits))
}

func (h *Handler) autofill(c *gin.Context) {
	var d ticket.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	filled, profile, err := h.history.Autofill(c.Request.Context(), d)
	if err != nil {
		h.degrade(c, err, gin.H{"draft": d})
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"draft":   filled,
		"profile": profile,
	}))
}

func (h *Handler) getReconciliation(c *gin.Context) {
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("location_id is required"))
		return
	}
	day := time.Now().In(h.opts.Location)
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		day, err = time.ParseInLocation("2006-01-02", raw, h.opts.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
	}

	cmp, err := h.reconcile.Compare(c.Request.Context(), locationID, day, "http")
	if err != nil {
		h.handleError(c, err, nil)
		return
	}

	if c.Query("format") == "xlsx" {
		f, err := export.ComparisonWorkbook(cmp)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to build comparison workbook")
			c.JSON(http.StatusInternalServerError, errorResponse("failed to generate workbook"))
			return
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			h.log.Error().Err(err).Msg("failed to write comparison workbook")
			c.JSON(http.StatusInternalServerError, errorResponse("failed to write workbook"))
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+export.Filename(cmp))
		c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, successResponse(cmp))
}

func (h *Handler) updateStaffCredentials(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.CredentialsUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.staff.UpdateCredentials(c.Request.Context(), id, in); err != nil {
		h.handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
