package enrichment

import (
	"context"
	"fmt"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
)

// buildConversation turns offset-ordered final segments into the terminal
// timeline. A summary becomes a sentinel row placed before its segment.
func buildConversation(m *entities.Meeting, finals []*entities.FinalSegment, speakerIDs map[int]uint) []*entities.ConversationSegment {
	out := make([]*entities.ConversationSegment, 0, len(finals))
	seq := 0
	for _, f := range finals {
		if f.Summary != nil {
			seq++
			out = append(out, &entities.ConversationSegment{
				MeetingID:     m.ID,
				Sequence:      seq,
				SpeakerID:     entities.SystemSpeakerID,
				UserID:        entities.SystemUserID,
				Text:          *f.Summary,
				OffsetSeconds: f.OffsetSeconds,
			})
		}
		seq++
		out = append(out, &entities.ConversationSegment{
			MeetingID:     m.ID,
			Sequence:      seq,
			SpeakerID:     speakerIDs[f.Speaker],
			UserID:        m.UserID,
			Text:          f.DisplayText(),
			OffsetSeconds: f.OffsetSeconds,
		})
	}
	return out
}

// materialize resolves speakers and writes the conversation rows
func (p *Pipeline) materialize(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	n, err := p.store.Conversations().Count(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("count conversation segments: %w", err)
	}
	if n > 0 {
		return &StageResult{Skipped: true}, nil
	}

	finals, err := p.store.Segments().ListFinal(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list final segments: %w", err)
	}
	if len(finals) == 0 {
		return &StageResult{}, nil
	}

	var rows []*entities.ConversationSegment
	speakerIDs := make(map[int]uint)
	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		for _, f := range finals {
			if _, ok := speakerIDs[f.Speaker]; ok {
				continue
			}
			sp, err := tx.Speakers().FindOrCreate(ctx, m.ID, entities.SpeakerName(f.Speaker), m.UserID)
			if err != nil {
				return fmt.Errorf("resolve speaker %d: %w", f.Speaker, err)
			}
			speakerIDs[f.Speaker] = sp.ID
		}
		rows = buildConversation(m, finals, speakerIDs)
		return tx.Conversations().CreateBatch(ctx, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation segments: %w", err)
	}
	return &StageResult{Rows: len(rows), Speakers: len(speakerIDs)}, nil
}
