package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/errors"
	"github.com/johnquangdev/meeting-enrichment/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-enrichment/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-enrichment/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/usecase/enrichment"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	service enrichment.Service
	logger  *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(service enrichment.Service, logger *zap.Logger) *Meeting {
	return &Meeting{service: service, logger: logger}
}

// Submit registers a meeting and submits its audio for transcription
// @Summary      Submit meeting audio
// @Description  Creates a meeting in processing state and submits the stored audio object to the transcription service
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Param        X-Signature            header    string                              false  "HMAC-SHA256 of <timestamp>.<body>"
// @Param        X-Signature-Timestamp  header    string                              false  "Unix seconds the request was signed at"
// @Param        request                body      meeting.SubmitMeetingRequest        true   "Audio object and owner"
// @Success      201                    {object}  meeting.MeetingResponse
// @Failure      400                    {object}  map[string]interface{}  "Invalid payload or object key"
// @Failure      404                    {object}  map[string]interface{}  "Audio object not found"
// @Failure      502                    {object}  map[string]interface{}  "Storage or transcription service failed"
// @Router       /v1/meetings [post]
func (h *Meeting) Submit(c echo.Context) error {
	var req meeting.SubmitMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	m, err := h.service.Submit(c.Request().Context(), enrichment.SubmitInput{
		UserID:         req.UserID,
		Title:          req.Title,
		AudioObjectKey: req.AudioObjectKey,
	})
	if err != nil {
		if m != nil {
			// the meeting exists but the transcription service rejected it
			return HandleError(h.logger, c, errors.ErrSubmissionFailed(err).WithDetail("meeting_id", m.ID.String()))
		}
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleCreated(h.logger, c, presenter.ToMeetingResponse(m))
}

// Get returns the pipeline status of a meeting
// @Summary      Get meeting status
// @Description  Returns the status, error message and per-table row counts of a meeting
// @Tags         Meetings
// @Produce      json
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  meeting.ProgressResponse
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /v1/meetings/{id} [get]
func (h *Meeting) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	progress, err := h.service.GetStatus(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToProgressResponse(progress))
}

// Conversation returns the materialized conversation of a finished meeting
// @Summary      Get meeting conversation
// @Description  Returns the conversation rows, summary rows included, once the eighth stage has completed
// @Tags         Meetings
// @Produce      json
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  meeting.ConversationResponse
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      409  {object}  map[string]interface{}  "Meeting has not finished enrichment"
// @Router       /v1/meetings/{id}/conversation [get]
func (h *Meeting) Conversation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	rows, err := h.service.GetConversation(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToConversationResponse(id.String(), rows))
}

// List returns meetings in one status
// @Summary      List meetings by status
// @Tags         Meetings
// @Produce      json
// @Param        status     query     string  true   "Meeting status"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        page_size  query     int     false  "Page size (default 20)"
// @Success      200        {object}  common.ListResponse
// @Failure      400        {object}  map[string]interface{}  "Unknown status"
// @Router       /v1/meetings [get]
func (h *Meeting) List(c echo.Context) error {
	var req meeting.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	meetings, err := h.service.ListByStatus(c.Request().Context(), entities.MeetingStatus(req.Status), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, common.ListResponse{
		Data: presenter.ToMeetingListResponse(meetings),
		Pagination: &common.PaginationResponse{
			Page:     req.Page,
			PageSize: req.PageSize,
			Count:    len(meetings),
		},
	})
}
