package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
)

// SpeakerRepository handles speaker data operations
type SpeakerRepository struct {
	db *gorm.DB
}

// NewSpeakerRepository creates a new speaker repository
func NewSpeakerRepository(db *gorm.DB) *SpeakerRepository {
	return &SpeakerRepository{db: db}
}

// FindOrCreate returns the live speaker named name, creating it when missing.
// Soft-deleted rows are not revived.
func (r *SpeakerRepository) FindOrCreate(ctx context.Context, meetingID uuid.UUID, name string, userID uint) (*entities.Speaker, error) {
	var speaker entities.Speaker
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND speaker_name = ?", meetingID, name).
		First(&speaker).Error
	if err == nil {
		return &speaker, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	speaker = entities.Speaker{
		MeetingID:   meetingID,
		SpeakerName: name,
		UserID:      userID,
	}
	if err := r.db.WithContext(ctx).Create(&speaker).Error; err != nil {
		return nil, err
	}
	return &speaker, nil
}

// ListByMeeting retrieves live speakers of a meeting
func (r *SpeakerRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Speaker, error) {
	var speakers []*entities.Speaker
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("id ASC").
		Find(&speakers).Error; err != nil {
		return nil, err
	}
	return speakers, nil
}

// ConversationRepository handles the terminal conversation table
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Count counts conversation rows of a meeting
func (r *ConversationRepository) Count(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ConversationSegment{}).
		Where("meeting_id = ?", meetingID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CreateBatch inserts conversation rows
func (r *ConversationRepository) CreateBatch(ctx context.Context, rows []*entities.ConversationSegment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListByMeeting retrieves the conversation timeline of a meeting
func (r *ConversationRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ConversationSegment, error) {
	var rows []*entities.ConversationSegment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
