package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
)

// SegmentRepository defines data access for the intermediate segment tables
type SegmentRepository interface {
	// Enrichment segments (stage 1-3)
	CountEnrichment(ctx context.Context, meetingID uuid.UUID) (int64, error)
	CreateEnrichment(ctx context.Context, segments []*entities.EnrichmentSegment) error
	ListEnrichment(ctx context.Context, meetingID uuid.UUID) ([]*entities.EnrichmentSegment, error)
	SaveScores(ctx context.Context, id uint, front, after float64) error
	SaveRevision(ctx context.Context, id uint, revisedText *string) error
	SaveDeleteCandidate(ctx context.Context, id uint, word *string) error

	// Merged segments (stage 4)
	CountMerged(ctx context.Context, meetingID uuid.UUID) (int64, error)
	CreateMerged(ctx context.Context, segments []*entities.MergedSegment) error
	ListMerged(ctx context.Context, meetingID uuid.UUID) ([]*entities.MergedSegment, error)

	// Final segments (stage 5-7)
	CountFinal(ctx context.Context, meetingID uuid.UUID) (int64, error)
	CreateFinal(ctx context.Context, segments []*entities.FinalSegment) error
	ListFinal(ctx context.Context, meetingID uuid.UUID) ([]*entities.FinalSegment, error)

	// SaveCleanedText sets cleaned_text only when it is still null
	SaveCleanedText(ctx context.Context, id uint, text string) error
	SaveSummary(ctx context.Context, id uint, summary string) error
	HasSummary(ctx context.Context, meetingID uuid.UUID) (bool, error)
}

// SpeakerRepository defines data access for meeting speakers
type SpeakerRepository interface {
	// FindOrCreate returns the live speaker row for name, creating it when missing
	FindOrCreate(ctx context.Context, meetingID uuid.UUID, name string, userID uint) (*entities.Speaker, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Speaker, error)
}

// ConversationRepository defines data access for the terminal conversation table
type ConversationRepository interface {
	Count(ctx context.Context, meetingID uuid.UUID) (int64, error)
	CreateBatch(ctx context.Context, rows []*entities.ConversationSegment) error
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ConversationSegment, error)
}
