package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recouphq/recoup/internal/api/dto"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/service"
)

// DunningHandler serves the read side of payment recovery: stats for the
// dashboard and per-subscription attempt history.
type DunningHandler struct {
	dunningService service.DunningService
	logger         *logger.Logger
}

// NewDunningHandler creates a new dunning handler
func NewDunningHandler(
	dunningService service.DunningService,
	logger *logger.Logger,
) *DunningHandler {
	return &DunningHandler{
		dunningService: dunningService,
		logger:         logger,
	}
}

// GetDunningStats returns recovery analytics over the attempt ledger
func (h *DunningHandler) GetDunningStats(c *gin.Context) {
	stats, err := h.dunningService.GetDunningStats(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to get dunning stats", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListAttempts returns the open dunning episode for one subscription
func (h *DunningHandler) ListAttempts(c *gin.Context) {
	subscriptionID := c.Param("id")
	if subscriptionID == "" {
		c.Error(ierr.NewError("subscription id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	attempts, err := h.dunningService.GetAttempts(c.Request.Context(), subscriptionID)
	if err != nil {
		h.logger.Errorw("failed to list dunning attempts",
			"subscription_id", subscriptionID,
			"error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListAttemptsResponse(attempts))
}
