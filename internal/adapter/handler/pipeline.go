package handler

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/errors"
	"github.com/johnquangdev/meeting-enrichment/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-enrichment/internal/usecase/enrichment"
	usecaseErrors "github.com/johnquangdev/meeting-enrichment/internal/usecase/errors"
)

// Poller triggers and reports pipeline polls. *enrichment.Scheduler satisfies it.
type Poller interface {
	RunNow(ctx context.Context) (*enrichment.RunReport, error)
	LastReport() (*enrichment.RunReport, time.Time)
}

// Pipeline handles the ops endpoints of the enrichment pipeline
type Pipeline struct {
	poller Poller
	logger *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(poller Poller, logger *zap.Logger) *Pipeline {
	return &Pipeline{poller: poller, logger: logger}
}

// Poll runs one pipeline poll immediately
// @Summary      Trigger pipeline poll
// @Description  Runs one poll over every pending meeting and returns its report
// @Tags         Pipeline
// @Produce      json
// @Success      200  {object}  meeting.PollResponse
// @Failure      409  {object}  map[string]interface{}  "Another poll holds the lease"
// @Failure      500  {object}  map[string]interface{}  "Poll failed"
// @Router       /v1/pipeline/poll [post]
func (h *Pipeline) Poll(c echo.Context) error {
	report, err := h.poller.RunNow(c.Request().Context())
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrPollInProgress) {
			return HandleError(h.logger, c, errors.ErrPollInProgress())
		}
		return HandleError(h.logger, c, errors.ErrProcessingFailed(err))
	}
	return HandleSuccess(h.logger, c, presenter.ToPollResponse(report, time.Now()))
}

// Last returns the report of the most recent poll
// @Summary      Last pipeline report
// @Tags         Pipeline
// @Produce      json
// @Success      200  {object}  meeting.PollResponse
// @Failure      404  {object}  map[string]interface{}  "No poll has run yet"
// @Router       /v1/pipeline/last [get]
func (h *Pipeline) Last(c echo.Context) error {
	report, at := h.poller.LastReport()
	if report == nil {
		return HandleError(h.logger, c, errors.ErrNotFound("Pipeline run"))
	}
	return HandleSuccess(h.logger, c, presenter.ToPollResponse(report, at))
}
