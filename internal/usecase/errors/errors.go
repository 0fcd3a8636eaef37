package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Meeting errors
var (
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrMissingAudio         = errors.New("meeting has no audio object")
	ErrAudioNotFound        = errors.New("audio object not found in storage")
	ErrMissingTranscription = errors.New("meeting has no transcription job")
	ErrConversationNotReady = errors.New("meeting conversation is not materialized yet")
)

// Pipeline errors
var (
	ErrTranscriptionNotConfigured = errors.New("transcription service is not configured")
	ErrStorageNotConfigured       = errors.New("object storage is not configured")
	ErrStorageUnavailable         = errors.New("object storage request failed")
	ErrPollInProgress             = errors.New("a pipeline poll is already running")
	ErrUnknownStage               = errors.New("no stage handles this status")
)

// NotReadyError reports a meeting whose conversation has not been materialized
type NotReadyError struct {
	Status string
}

func (e *NotReadyError) Error() string {
	return ErrConversationNotReady.Error() + ": status " + e.Status
}

func (e *NotReadyError) Unwrap() error {
	return ErrConversationNotReady
}
