package repositories

import "context"

// Store groups the repositories used by the enrichment pipeline.
// Transaction runs fn against a Store bound to one database transaction;
// returning an error rolls every write back.
type Store interface {
	Meetings() MeetingRepository
	Segments() SegmentRepository
	Speakers() SpeakerRepository
	Conversations() ConversationRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
