package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
)

// speakerRun accumulates the sentences of one uninterrupted speaker turn
type speakerRun struct {
	speaker   int
	offset    float64
	sentences []string
	seen      map[string]struct{}
}

func (r *speakerRun) add(text string) {
	for _, s := range splitSentences(text) {
		s += period
		if _, dup := r.seen[s]; dup {
			continue
		}
		r.seen[s] = struct{}{}
		r.sentences = append(r.sentences, s)
	}
}

// consolidate collapses consecutive segments of the same speaker into one
// final segment, dropping sentences repeated within the run. merged must be
// ordered by offset.
func consolidate(meetingID uuid.UUID, merged []*entities.MergedSegment) []*entities.FinalSegment {
	var (
		out []*entities.FinalSegment
		cur *speakerRun
	)
	flush := func() {
		if cur == nil || len(cur.sentences) == 0 {
			return
		}
		out = append(out, &entities.FinalSegment{
			MeetingID:     meetingID,
			Speaker:       cur.speaker,
			MergedText:    strings.Join(cur.sentences, " "),
			OffsetSeconds: cur.offset,
		})
	}

	for _, seg := range merged {
		if cur == nil || seg.Speaker != cur.speaker {
			flush()
			cur = &speakerRun{
				speaker: seg.Speaker,
				offset:  seg.OffsetSeconds,
				seen:    make(map[string]struct{}),
			}
		}
		cur.add(seg.MergedText)
	}
	flush()
	return out
}

// consolidateRuns writes the final segments of a meeting
func (p *Pipeline) consolidateRuns(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	n, err := p.store.Segments().CountFinal(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("count final segments: %w", err)
	}
	if n > 0 {
		return &StageResult{Skipped: true}, nil
	}

	merged, err := p.store.Segments().ListMerged(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list merged segments: %w", err)
	}

	finals := consolidate(m.ID, merged)
	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		return tx.Segments().CreateFinal(ctx, finals)
	})
	if err != nil {
		return nil, fmt.Errorf("create final segments: %w", err)
	}
	return &StageResult{Rows: len(finals)}, nil
}
