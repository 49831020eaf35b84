package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wishsender/internal/birthday"
)

type checkHandler struct {
	trigger Trigger
	logs    birthday.LogStore
	loc     *time.Location
	logger  *zap.Logger
}

// TriggerCheck handles POST /api/checks/trigger. It blocks until the run
// finishes (waiting out any in-flight run) and returns the summary.
func (h *checkHandler) TriggerCheck(c *gin.Context) {
	summary, err := h.trigger.TriggerNow(c.Request.Context())
	if err != nil {
		h.logger.Error("Manual birthday check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "check run failed",
			"summary": summary,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "completed",
		"summary": summary,
	})
}

// ListLogs handles GET /api/logs?day=YYYY-MM-DD (default: today).
func (h *checkHandler) ListLogs(c *gin.Context) {
	day := time.Now().In(h.loc)
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, h.loc)
	to := from.Add(24 * time.Hour)

	entries, err := h.logs.QueryLogs(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("Failed to query send logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query logs"})
		return
	}

	type logResponse struct {
		ID           int64     `json:"id"`
		ContactID    int64     `json:"contact_id"`
		ContactName  string    `json:"contact_name"`
		ContactEmail string    `json:"contact_email"`
		Status       string    `json:"status"`
		SentAt       time.Time `json:"sent_at"`
		ErrorMessage string    `json:"error_message,omitempty"`
	}

	out := make([]logResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, logResponse{
			ID:           e.ID,
			ContactID:    e.ContactID,
			ContactName:  e.ContactName,
			ContactEmail: e.ContactEmail,
			Status:       e.Status,
			SentAt:       e.SentAt,
			ErrorMessage: e.ErrorMessage,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"day":  from.Format("2006-01-02"),
		"logs": out,
	})
}
