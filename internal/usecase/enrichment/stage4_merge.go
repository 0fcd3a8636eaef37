package enrichment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
)

// mergeSegments emits one row per non-filler line. A completed filler that
// directly follows the line is appended in parentheses; the fragment the
// filler borrowed is removed from the line that gave it away.
func mergeSegments(meetingID uuid.UUID, rows []*entities.EnrichmentSegment) []*entities.MergedSegment {
	lines := byLine(rows)
	out := make([]*entities.MergedSegment, 0, len(rows))
	for _, r := range rows {
		if r.IsFiller {
			continue
		}

		text := r.Text
		if r.DeleteCandidateWord != nil && *r.DeleteCandidateWord != "" {
			text = strings.Replace(text, *r.DeleteCandidateWord, "", 1)
		}

		sources := strconv.Itoa(r.LineNo)
		if next := lines[r.LineNo+1]; next != nil && next.RevisedText != nil && *next.RevisedText != "" {
			text += "(" + *next.RevisedText + ")"
			sources = fmt.Sprintf("%d,%d", r.LineNo, next.LineNo)
		}

		out = append(out, &entities.MergedSegment{
			MeetingID:        meetingID,
			LineNo:           r.LineNo,
			Speaker:          r.Speaker,
			OffsetSeconds:    r.OffsetSeconds,
			OriginalText:     r.Text,
			MergedText:       text,
			SourceSegmentIDs: sources,
		})
	}
	return out
}

// merge folds completed fillers into their neighbors
func (p *Pipeline) merge(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	n, err := p.store.Segments().CountMerged(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("count merged segments: %w", err)
	}
	if n > 0 {
		return &StageResult{Skipped: true}, nil
	}

	rows, err := p.store.Segments().ListEnrichment(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list enrichment segments: %w", err)
	}

	merged := mergeSegments(m.ID, rows)
	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		return tx.Segments().CreateMerged(ctx, merged)
	})
	if err != nil {
		return nil, fmt.Errorf("create merged segments: %w", err)
	}
	return &StageResult{Rows: len(merged)}, nil
}
