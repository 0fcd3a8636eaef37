package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// ListPending retrieves meetings that still have work to do. Rows that keep
// their status are rotated to the back by Touch, so a stuck meeting cannot
// hold the batch.
func (r *MeetingRepository) ListPending(ctx context.Context, limit int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if limit <= 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ?", entities.PendingStatuses()).
		Order("updated_at ASC").
		Order("created_at ASC").
		Limit(limit).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// ListUnknownStatus retrieves meetings whose status is not part of the state machine
func (r *MeetingRepository) ListUnknownStatus(ctx context.Context) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", entities.KnownStatuses()).
		Order("created_at ASC").
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// Touch bumps updated_at of a meeting still in status
func (r *MeetingRepository) Touch(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, status).
		Update("updated_at", time.Now()).Error
}

// ListByStatus retrieves meetings with a specific status
func (r *MeetingRepository) ListByStatus(ctx context.Context, status entities.MeetingStatus, limit, offset int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if limit <= 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// AttachJob stores the AssemblyAI transcript id on the meeting
func (r *MeetingRepository) AttachJob(ctx context.Context, id uuid.UUID, jobID string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"external_job_id": jobID,
			"updated_at":      time.Now(),
		}).Error
}

// CompleteTranscription stores the transcript and marks the meeting transcribed
func (r *MeetingRepository) CompleteTranscription(ctx context.Context, id uuid.UUID, transcript string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, entities.MeetingStatusProcessing).
		Updates(map[string]interface{}{
			"transcript":    transcript,
			"status":        entities.MeetingStatusTranscribed,
			"error_message": nil,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkUpstreamTerminal freezes a processing meeting as failed or noresult
func (r *MeetingRepository) MarkUpstreamTerminal(ctx context.Context, id uuid.UUID, status entities.MeetingStatus, message string) (bool, error) {
	if !entities.CanTransition(entities.MeetingStatusProcessing, status) || !status.IsTerminal() {
		return false, entities.ErrNoTransition
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, entities.MeetingStatusProcessing).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": message,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdvanceStatus performs a conditional status update
func (r *MeetingRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error) {
	if !entities.CanTransition(from, to) {
		return false, entities.ErrNoTransition
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateMetadata replaces the metadata column
func (r *MeetingRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entities.MeetingMetadata) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Update("metadata", datatypes.NewJSONType(metadata)).Error
}
