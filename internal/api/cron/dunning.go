package cron

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recouphq/recoup/internal/api/dto"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/service"
)

// DunningCronHandler handles dunning related cron jobs
type DunningCronHandler struct {
	dunningService service.DunningService
	logger         *logger.Logger
}

// NewDunningCronHandler creates a new dunning cron handler
func NewDunningCronHandler(
	dunningService service.DunningService,
	logger *logger.Logger,
) *DunningCronHandler {
	return &DunningCronHandler{
		dunningService: dunningService,
		logger:         logger,
	}
}

// ProcessDunning runs a dunning sweep. With subscription IDs in the body the
// sweep is restricted to those subscriptions; otherwise it covers every
// past_due subscription.
func (h *DunningCronHandler) ProcessDunning(c *gin.Context) {
	h.logger.Infow("starting dunning sweep cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.ProcessDunningRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse request body", "error", err)
			c.Error(err)
			return
		}
		if err := req.Validate(); err != nil {
			c.Error(err)
			return
		}
	}

	if len(req.SubscriptionIDs) > 0 {
		h.processSelected(c, req.SubscriptionIDs)
		return
	}

	result, err := h.dunningService.ProcessPastDueSubscriptions(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to run dunning sweep", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed dunning sweep cron job")
	c.JSON(http.StatusOK, result)
}

func (h *DunningCronHandler) processSelected(c *gin.Context, ids []string) {
	ctx := c.Request.Context()
	result := &dto.DunningSweepResponse{Candidates: len(ids)}

	for _, id := range ids {
		sub, err := h.dunningService.GetSubscription(ctx, id)
		if err != nil {
			h.logger.Errorw("failed to load subscription for dunning", "subscription_id", id, "error", err)
			result.Errored++
			continue
		}
		if err := h.dunningService.ProcessSubscription(ctx, sub); err != nil {
			result.Errored++
		}
	}

	c.JSON(http.StatusOK, result)
}
