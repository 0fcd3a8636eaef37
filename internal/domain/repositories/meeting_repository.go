package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting record
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by ID, nil when it does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// ListPending retrieves meetings in a known non-terminal status, least
	// recently updated first
	ListPending(ctx context.Context, limit int) ([]*entities.Meeting, error)

	// ListUnknownStatus retrieves every meeting whose stored status the state
	// machine does not recognize
	ListUnknownStatus(ctx context.Context) ([]*entities.Meeting, error)

	// Touch bumps updated_at while the status still equals status, moving the
	// meeting to the back of the pending queue
	Touch(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error

	// ListByStatus retrieves meetings with the given status
	ListByStatus(ctx context.Context, status entities.MeetingStatus, limit, offset int) ([]*entities.Meeting, error)

	// AttachJob stores the upstream transcription job id
	AttachJob(ctx context.Context, id uuid.UUID, jobID string) error

	// CompleteTranscription stores the raw transcript and moves processing -> transcribed.
	// Returns false when the meeting was no longer processing.
	CompleteTranscription(ctx context.Context, id uuid.UUID, transcript string) (bool, error)

	// MarkUpstreamTerminal moves processing -> failed/noresult with an error message
	MarkUpstreamTerminal(ctx context.Context, id uuid.UUID, status entities.MeetingStatus, message string) (bool, error)

	// AdvanceStatus moves from -> to only when the stored status still equals from
	AdvanceStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error)

	// UpdateMetadata replaces the metadata JSON of a meeting
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entities.MeetingMetadata) error
}
