package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
)

// SegmentRepository handles the enrichment, merged and final segment tables
type SegmentRepository struct {
	db *gorm.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *gorm.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

func (r *SegmentRepository) count(ctx context.Context, model interface{}, meetingID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("meeting_id = ?", meetingID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CountEnrichment counts stage 1 rows of a meeting
func (r *SegmentRepository) CountEnrichment(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	return r.count(ctx, &entities.EnrichmentSegment{}, meetingID)
}

// CreateEnrichment inserts stage 1 rows
func (r *SegmentRepository) CreateEnrichment(ctx context.Context, segments []*entities.EnrichmentSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&segments).Error
}

// ListEnrichment retrieves stage 1 rows ordered by line number
func (r *SegmentRepository) ListEnrichment(ctx context.Context, meetingID uuid.UUID) ([]*entities.EnrichmentSegment, error) {
	var segments []*entities.EnrichmentSegment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("line_no ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// SaveScores stores the naturalness scores of a filler row
func (r *SegmentRepository) SaveScores(ctx context.Context, id uint, front, after float64) error {
	return r.db.WithContext(ctx).
		Model(&entities.EnrichmentSegment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"front_score": front,
			"after_score": after,
		}).Error
}

// SaveRevision stores the completed text of a filler row
func (r *SegmentRepository) SaveRevision(ctx context.Context, id uint, revisedText *string) error {
	return r.db.WithContext(ctx).
		Model(&entities.EnrichmentSegment{}).
		Where("id = ?", id).
		Update("revised_text", revisedText).Error
}

// SaveDeleteCandidate stores the fragment a neighbor row gave away
func (r *SegmentRepository) SaveDeleteCandidate(ctx context.Context, id uint, word *string) error {
	return r.db.WithContext(ctx).
		Model(&entities.EnrichmentSegment{}).
		Where("id = ?", id).
		Update("delete_candidate_word", word).Error
}

// CountMerged counts stage 4 rows of a meeting
func (r *SegmentRepository) CountMerged(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	return r.count(ctx, &entities.MergedSegment{}, meetingID)
}

// CreateMerged inserts stage 4 rows
func (r *SegmentRepository) CreateMerged(ctx context.Context, segments []*entities.MergedSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&segments).Error
}

// ListMerged retrieves stage 4 rows in timeline order
func (r *SegmentRepository) ListMerged(ctx context.Context, meetingID uuid.UUID) ([]*entities.MergedSegment, error) {
	var segments []*entities.MergedSegment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("offset_seconds ASC, line_no ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// CountFinal counts stage 5 rows of a meeting
func (r *SegmentRepository) CountFinal(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	return r.count(ctx, &entities.FinalSegment{}, meetingID)
}

// CreateFinal inserts stage 5 rows
func (r *SegmentRepository) CreateFinal(ctx context.Context, segments []*entities.FinalSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&segments).Error
}

// ListFinal retrieves stage 5 rows in timeline order
func (r *SegmentRepository) ListFinal(ctx context.Context, meetingID uuid.UUID) ([]*entities.FinalSegment, error) {
	var segments []*entities.FinalSegment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("offset_seconds ASC, id ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// SaveCleanedText sets cleaned_text once
func (r *SegmentRepository) SaveCleanedText(ctx context.Context, id uint, text string) error {
	return r.db.WithContext(ctx).
		Model(&entities.FinalSegment{}).
		Where("id = ? AND cleaned_text IS NULL", id).
		Update("cleaned_text", text).Error
}

// SaveSummary stores a block title on a block-leading row
func (r *SegmentRepository) SaveSummary(ctx context.Context, id uint, summary string) error {
	return r.db.WithContext(ctx).
		Model(&entities.FinalSegment{}).
		Where("id = ?", id).
		Update("summary", summary).Error
}

// HasSummary reports whether stage 7 already titled the meeting
func (r *SegmentRepository) HasSummary(ctx context.Context, meetingID uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&entities.FinalSegment{}).
		Where("meeting_id = ? AND summary IS NOT NULL", meetingID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
