package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-enrichment/internal/usecase/errors"
)

// Service defines the meeting use cases exposed to the HTTP layer
type Service interface {
	// Submit registers a meeting and starts its transcription job
	Submit(ctx context.Context, input SubmitInput) (*entities.Meeting, error)

	// GetStatus returns a meeting with the row counts of every stage table
	GetStatus(ctx context.Context, id uuid.UUID) (*MeetingProgress, error)

	// GetConversation returns the materialized timeline of a meeting
	GetConversation(ctx context.Context, id uuid.UUID) ([]*entities.ConversationSegment, error)

	// ListByStatus lists meetings currently in status
	ListByStatus(ctx context.Context, status entities.MeetingStatus, limit, offset int) ([]*entities.Meeting, error)
}

// Ensure MeetingService implements Service interface
var _ Service = (*MeetingService)(nil)

// SubmitInput represents input for registering a meeting
type SubmitInput struct {
	UserID         uint
	Title          string
	AudioObjectKey string
}

// MeetingProgress is a meeting together with how far each stage got
type MeetingProgress struct {
	Meeting       *entities.Meeting `json:"meeting"`
	Enrichment    int64             `json:"enrichment_segments"`
	Merged        int64             `json:"merged_segments"`
	Final         int64             `json:"final_segments"`
	Conversation  int64             `json:"conversation_segments"`
	NextStage     int               `json:"next_stage,omitempty"`
	NextStageName string            `json:"next_stage_name,omitempty"`
}

// MeetingService handles meeting registration and progress queries
type MeetingService struct {
	store       repositories.Store
	transcriber Transcriber
	objects     ObjectStore
	pipeline    *Pipeline
	logger      *zap.Logger
}

// NewMeetingService creates a new meeting service. transcriber and objects
// may be nil; Submit then reports them as not configured.
func NewMeetingService(store repositories.Store, transcriber Transcriber, objects ObjectStore, pipeline *Pipeline, logger *zap.Logger) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{
		store:       store,
		transcriber: transcriber,
		objects:     objects,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// Submit checks the audio object, stores the meeting in processing and
// submits a presigned URL to the transcription service. A rejected
// submission leaves the meeting failed with the reason.
func (s *MeetingService) Submit(ctx context.Context, input SubmitInput) (*entities.Meeting, error) {
	key := strings.TrimSpace(input.AudioObjectKey)
	if key == "" {
		return nil, usecaseErrors.ErrMissingAudio
	}
	if s.objects == nil {
		return nil, usecaseErrors.ErrStorageNotConfigured
	}
	if s.transcriber == nil {
		return nil, usecaseErrors.ErrTranscriptionNotConfigured
	}

	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrStorageUnavailable, err)
	}
	if !exists {
		return nil, usecaseErrors.ErrAudioNotFound
	}

	meeting := entities.NewMeeting(input.UserID, input.Title, key)
	if err := s.store.Meetings().Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	log := s.logger.With(zap.String("meeting_id", meeting.ID.String()))

	audioURL, err := s.objects.PresignAudio(ctx, key)
	if err != nil {
		return s.failSubmission(ctx, meeting, fmt.Errorf("failed to presign audio: %w", err), log)
	}

	jobID, err := s.transcriber.Submit(ctx, audioURL)
	if err != nil {
		return s.failSubmission(ctx, meeting, fmt.Errorf("failed to submit transcription: %w", err), log)
	}

	if err := s.store.Meetings().AttachJob(ctx, meeting.ID, jobID); err != nil {
		return nil, fmt.Errorf("failed to store transcription job: %w", err)
	}
	meeting.ExternalJobID = &jobID

	log.Info("✅ Meeting submitted for transcription", zap.String("job_id", jobID))
	return meeting, nil
}

func (s *MeetingService) failSubmission(ctx context.Context, meeting *entities.Meeting, cause error, log *zap.Logger) (*entities.Meeting, error) {
	msg := cause.Error()
	if _, err := s.store.Meetings().MarkUpstreamTerminal(ctx, meeting.ID, entities.MeetingStatusFailed, msg); err != nil {
		log.Error("❌ Failed to mark meeting failed", zap.Error(err))
	}
	meeting.Status = entities.MeetingStatusFailed
	meeting.ErrorMessage = &msg
	log.Error("❌ Meeting submission failed", zap.Error(cause))
	return meeting, cause
}

// GetStatus returns a meeting with its stage row counts
func (s *MeetingService) GetStatus(ctx context.Context, id uuid.UUID) (*MeetingProgress, error) {
	meeting, err := s.store.Meetings().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	if meeting == nil {
		return nil, usecaseErrors.ErrMeetingNotFound
	}

	progress := &MeetingProgress{Meeting: meeting}
	if progress.Enrichment, err = s.store.Segments().CountEnrichment(ctx, id); err != nil {
		return nil, err
	}
	if progress.Merged, err = s.store.Segments().CountMerged(ctx, id); err != nil {
		return nil, err
	}
	if progress.Final, err = s.store.Segments().CountFinal(ctx, id); err != nil {
		return nil, err
	}
	if progress.Conversation, err = s.store.Conversations().Count(ctx, id); err != nil {
		return nil, err
	}

	if status, err := entities.ParseMeetingStatus(string(meeting.Status)); err == nil {
		progress.NextStage = status.Stage()
		if s.pipeline != nil {
			progress.NextStageName = s.pipeline.StageName(progress.NextStage)
		}
	}
	return progress, nil
}

// GetConversation returns the conversation rows of a meeting in sequence
// order. Meetings that have not finished stage 8 return a NotReadyError.
func (s *MeetingService) GetConversation(ctx context.Context, id uuid.UUID) ([]*entities.ConversationSegment, error) {
	meeting, err := s.store.Meetings().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	if meeting == nil {
		return nil, usecaseErrors.ErrMeetingNotFound
	}
	if status, _ := entities.ParseMeetingStatus(string(meeting.Status)); status != entities.MeetingStatusStep8Completed {
		return nil, &usecaseErrors.NotReadyError{Status: string(meeting.Status)}
	}
	return s.store.Conversations().ListByMeeting(ctx, id)
}

// ListByStatus lists meetings in a given status, newest first
func (s *MeetingService) ListByStatus(ctx context.Context, status entities.MeetingStatus, limit, offset int) ([]*entities.Meeting, error) {
	if _, err := entities.ParseMeetingStatus(string(status)); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidInput, err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Meetings().ListByStatus(ctx, status, limit, offset)
}
