package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
)

// GormStore bundles the GORM repositories behind repositories.Store
type GormStore struct {
	db            *gorm.DB
	meetings      *MeetingRepository
	segments      *SegmentRepository
	speakers      *SpeakerRepository
	conversations *ConversationRepository
}

// NewGormStore creates a store over db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:            db,
		meetings:      NewMeetingRepository(db),
		segments:      NewSegmentRepository(db),
		speakers:      NewSpeakerRepository(db),
		conversations: NewConversationRepository(db),
	}
}

func (s *GormStore) Meetings() repositories.MeetingRepository {
	return s.meetings
}

func (s *GormStore) Segments() repositories.SegmentRepository {
	return s.segments
}

func (s *GormStore) Speakers() repositories.SpeakerRepository {
	return s.speakers
}

func (s *GormStore) Conversations() repositories.ConversationRepository {
	return s.conversations
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
