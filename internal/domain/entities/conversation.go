package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reserved ids marking a system-generated summary row
const (
	SystemSpeakerID uint = 0
	SystemUserID    uint = 0
)

// ConversationSegment is the terminal, consumer-facing row of a meeting.
// Sequence preserves the offset-ascending timeline.
type ConversationSegment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MeetingID     uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index:idx_conversation_meeting_seq"`
	Sequence      int       `json:"sequence" gorm:"not null;index:idx_conversation_meeting_seq"`
	SpeakerID     uint      `json:"speaker_id" gorm:"not null;default:0"`
	UserID        uint      `json:"user_id" gorm:"not null;default:0"`
	Text          string    `json:"text" gorm:"type:text;not null"`
	OffsetSeconds float64   `json:"offset_seconds" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ConversationSegment) TableName() string {
	return "conversation_segments"
}

// IsSummary reports whether the row is a sentinel summary row
func (c *ConversationSegment) IsSummary() bool {
	return c.SpeakerID == SystemSpeakerID && c.UserID == SystemUserID
}

// Speaker is a diarized speaker of one meeting
type Speaker struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	MeetingID   uuid.UUID      `json:"meeting_id" gorm:"type:uuid;not null;index:idx_speaker_meeting_name"`
	SpeakerName string         `json:"speaker_name" gorm:"type:varchar(100);not null;index:idx_speaker_meeting_name"`
	UserID      uint           `json:"user_id" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for GORM
func (Speaker) TableName() string {
	return "speakers"
}

// SpeakerName returns the display name of diarized speaker n
func SpeakerName(n int) string {
	return fmt.Sprintf("Speaker%d", n)
}
