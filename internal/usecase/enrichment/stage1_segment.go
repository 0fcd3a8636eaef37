package enrichment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
)

// buildEnrichmentSegments numbers utterances from 1 and flags fillers
func buildEnrichmentSegments(meetingID uuid.UUID, utterances []Utterance) []*entities.EnrichmentSegment {
	out := make([]*entities.EnrichmentSegment, 0, len(utterances))
	for i, u := range utterances {
		out = append(out, &entities.EnrichmentSegment{
			MeetingID:     meetingID,
			LineNo:        i + 1,
			Speaker:       u.Speaker,
			Text:          u.Text,
			OffsetSeconds: u.Offset,
			IsFiller:      isFiller(u.Text),
		})
	}
	return out
}

// segment parses the raw transcript into enrichment rows
func (p *Pipeline) segment(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	n, err := p.store.Segments().CountEnrichment(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("count enrichment segments: %w", err)
	}
	if n > 0 {
		return &StageResult{Skipped: true}, nil
	}

	rows := buildEnrichmentSegments(m.ID, Parse(m.Transcript))
	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		return tx.Segments().CreateEnrichment(ctx, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("create enrichment segments: %w", err)
	}
	return &StageResult{Rows: len(rows)}, nil
}
