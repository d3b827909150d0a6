package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recouphq/recoup/internal/api/cron"
	v1 "github.com/recouphq/recoup/internal/api/v1"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/rest/middleware"
	"github.com/recouphq/recoup/internal/service"
	"github.com/recouphq/recoup/internal/types"
)

// Handlers bundles the HTTP handlers mounted by the router.
type Handlers struct {
	Dunning     *v1.DunningHandler
	DunningCron *cron.DunningCronHandler
}

// NewHandlers builds the handler set from the service layer.
func NewHandlers(dunningService service.DunningService, log *logger.Logger) Handlers {
	return Handlers{
		Dunning:     v1.NewDunningHandler(dunningService, log),
		DunningCron: cron.NewDunningCronHandler(dunningService, log),
	}
}

// NewRouter builds the gin engine with the standard middleware chain and all
// routes mounted.
func NewRouter(handlers Handlers, mode types.DeploymentMode, log *logger.Logger) *gin.Engine {
	if mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.TenantMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler,
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := router.Group("/v1")
	{
		dunning := v1Group.Group("/dunning")
		{
			dunning.GET("/stats", handlers.Dunning.GetDunningStats)
			dunning.GET("/subscriptions/:id/attempts", handlers.Dunning.ListAttempts)
		}
	}

	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/dunning/process", handlers.DunningCron.ProcessDunning)
	}

	return router
}
