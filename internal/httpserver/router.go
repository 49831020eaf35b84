package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wishsender/internal/birthday"
	"wishsender/internal/model"
)

// Trigger starts a check run on demand.
type Trigger interface {
	TriggerNow(ctx context.Context) (model.RunSummary, error)
}

// Pinger is the health-check view of the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	trigger Trigger,
	logs birthday.LogStore,
	loc *time.Location,
	db Pinger,
	logger *zap.Logger,
) *Router {
	r := gin.Default()

	h := &checkHandler{
		trigger: trigger,
		logs:    logs,
		loc:     loc,
		logger:  logger,
	}

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/checks/trigger", h.TriggerCheck)
		api.GET("/logs", h.ListLogs)
	}

	return &Router{Engine: r}
}
