package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"officehours-backend/internal/reminder"
)

// GetReminders handles GET /api/reminders.
func (h *Handler) GetReminders(c *gin.Context) {
	list, err := h.reminders.Reminders(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reminders"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// PostResync handles POST /api/reminders/resync.
func (h *Handler) PostResync(c *gin.Context) {
	count, err := h.reminders.Refresh(c.Request.Context())
	h.writeResync(c, count, err)
}

type postTestRequest struct {
	Seconds int `json:"seconds" binding:"gte=0"`
}

// PostTestNotification handles POST /api/reminders/test. The body is optional.
func (h *Handler) PostTestNotification(c *gin.Context) {
	var req postTestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	id, err := h.reminders.SendTest(c.Request.Context(), req.Seconds)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule test notification"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type postDailyTestRequest struct {
	Hour   *int `json:"hour" binding:"required"`
	Minute *int `json:"minute" binding:"required"`
}

// PostDailyTestNotification handles POST /api/reminders/test/daily.
func (h *Handler) PostDailyTestNotification(c *gin.Context) {
	var req postDailyTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.reminders.SendTestDaily(c.Request.Context(), *req.Hour, *req.Minute)
	if errors.Is(err, reminder.ErrInvalidTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule test notification"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// PostTestSeries handles POST /api/reminders/test/series.
func (h *Handler) PostTestSeries(c *gin.Context) {
	ids, err := h.reminders.SendTestSeries(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule test notifications"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ids": ids})
}
