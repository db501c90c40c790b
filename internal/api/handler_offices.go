package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"officehours-backend/internal/clock"
	"officehours-backend/internal/reminder"
	"officehours-backend/internal/store"
)

// GetCatalog handles GET /api/catalog.
func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Offices())
}

// GetOffices handles GET /api/offices.
func (h *Handler) GetOffices(c *gin.Context) {
	c.JSON(http.StatusOK, h.reminders.Offices(c.Request.Context()))
}

type putEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PutOfficeEnabled handles PUT /api/offices/:id/enabled.
func (h *Handler) PutOfficeEnabled(c *gin.Context) {
	var req putEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.reminders.SetEnabled(c.Request.Context(), c.Param("id"), *req.Enabled)
	h.writeResync(c, count, err)
}

type putNotificationTimeRequest struct {
	Hour   *int `json:"hour"`
	Minute *int `json:"minute"`
	Clear  bool `json:"clear"`
}

// PutNotificationTime handles PUT /api/offices/:id/notifications/:event.
func (h *Handler) PutNotificationTime(c *gin.Context) {
	event, err := store.ParseEvent(c.Param("event"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req putNotificationTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var at *clock.Time
	if !req.Clear {
		if req.Hour == nil || req.Minute == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hour and minute are required unless clear is set"})
			return
		}
		at = &clock.Time{Hour: *req.Hour, Minute: *req.Minute}
	}

	count, err := h.reminders.SetNotificationTime(c.Request.Context(), c.Param("id"), event, at)
	h.writeResync(c, count, err)
}

// writeResync reports the outcome of a flow that ended in a resync. Partial
// scheduling failures are reported as a warning next to the count.
func (h *Handler) writeResync(c *gin.Context, count int, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"scheduled": count})
	case errors.Is(err, reminder.ErrUnknownOffice):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reminder.ErrInvalidTime):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Warn("resync incomplete", zap.Int("scheduled", count), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"scheduled": count, "warning": err.Error()})
	}
}
