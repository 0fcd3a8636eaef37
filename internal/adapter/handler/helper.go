package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/errors"
	usecaseErrors "github.com/johnquangdev/meeting-enrichment/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusOK, data)
}

// HandleCreated writes a standardized 201 response
func HandleCreated(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusCreated, data)
}

func respond(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// toAppError maps use case errors onto their HTTP representation
func toAppError(err error, meetingID string) error {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrMissingAudio),
		stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.AppError{
			Raw:      err,
			HTTPCode: http.StatusBadRequest,
			Code:     errors.ErrorCode_INVALID_ARGUMENT,
			Message:  "Invalid request",
		}
	case stdErrors.Is(err, usecaseErrors.ErrAudioNotFound):
		return errors.ErrNotFound("Audio object")
	case stdErrors.Is(err, usecaseErrors.ErrStorageNotConfigured),
		stdErrors.Is(err, usecaseErrors.ErrTranscriptionNotConfigured):
		return errors.AppError{
			Raw:      err,
			HTTPCode: http.StatusServiceUnavailable,
			Code:     errors.ErrorCode_PROCESSING_FAILED,
			Message:  "Service dependency is not configured",
		}
	case stdErrors.Is(err, usecaseErrors.ErrPollInProgress):
		return errors.ErrPollInProgress()
	case stdErrors.Is(err, usecaseErrors.ErrStorageUnavailable):
		return errors.ErrStorageFailed("stat audio object", err)
	}

	var notReady *usecaseErrors.NotReadyError
	if stdErrors.As(err, &notReady) {
		return errors.ErrMeetingInvalidState(meetingID, notReady.Status)
	}
	return errors.ErrInternal(err)
}
