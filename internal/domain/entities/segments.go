package entities

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentSegment is one parsed utterance line of a meeting transcript.
// IsFiller is decided once at creation and never recomputed.
type EnrichmentSegment struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	MeetingID           uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrichment_meeting_line"`
	LineNo              int       `json:"line_no" gorm:"not null;uniqueIndex:idx_enrichment_meeting_line"`
	Speaker             int       `json:"speaker" gorm:"not null"`
	Text                string    `json:"text" gorm:"type:text;not null"`
	OffsetSeconds       float64   `json:"offset_seconds" gorm:"not null;default:0"`
	IsFiller            bool      `json:"is_filler" gorm:"not null;default:false"`
	FrontScore          *float64  `json:"front_score,omitempty"`
	AfterScore          *float64  `json:"after_score,omitempty"`
	RevisedText         *string   `json:"revised_text,omitempty" gorm:"type:text"`
	DeleteCandidateWord *string   `json:"delete_candidate_word,omitempty" gorm:"type:text"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (EnrichmentSegment) TableName() string {
	return "enrichment_segments"
}

// IsScored reports whether stage 2 already stored both scores
func (s *EnrichmentSegment) IsScored() bool {
	return s.FrontScore != nil && s.AfterScore != nil
}

// MergedSegment is a non-filler line with its absorbed filler completion
type MergedSegment struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	MeetingID        uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	LineNo           int       `json:"line_no" gorm:"not null"`
	Speaker          int       `json:"speaker" gorm:"not null"`
	OffsetSeconds    float64   `json:"offset_seconds" gorm:"not null;default:0"`
	OriginalText     string    `json:"original_text" gorm:"type:text;not null"`
	MergedText       string    `json:"merged_text" gorm:"type:text;not null"`
	SourceSegmentIDs string    `json:"source_segment_ids" gorm:"type:varchar(64);not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MergedSegment) TableName() string {
	return "merged_segments"
}

// FinalSegment is one consolidated speaker run
type FinalSegment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MeetingID     uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Speaker       int       `json:"speaker" gorm:"not null"`
	MergedText    string    `json:"merged_text" gorm:"type:text;not null"`
	OffsetSeconds float64   `json:"offset_seconds" gorm:"not null;default:0"`
	CleanedText   *string   `json:"cleaned_text,omitempty" gorm:"type:text"`
	Summary       *string   `json:"summary,omitempty" gorm:"type:varchar(64)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (FinalSegment) TableName() string {
	return "final_segments"
}

// DisplayText returns the cleaned text, or the merged text when stage 6
// has not produced one
func (s *FinalSegment) DisplayText() string {
	if s.CleanedText != nil {
		return *s.CleanedText
	}
	return s.MergedText
}
