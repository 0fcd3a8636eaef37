package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
)

// completion is the stage 3 decision for one filler row. NeighborID is 0
// when no neighbor fragment was adopted.
type completion struct {
	FillerID   uint
	Revised    *string
	NeighborID uint
	Candidate  *string
}

// planCompletions attaches every scored filler to the neighbor it reads most
// naturally with. Ties go to the front neighbor.
func planCompletions(rows []*entities.EnrichmentSegment) []completion {
	lines := byLine(rows)
	var out []completion
	for _, r := range rows {
		if !r.IsFiller || !r.IsScored() {
			continue
		}
		c := completion{FillerID: r.ID}
		bracket := stripEnclosing(r.Text)

		if *r.FrontScore >= *r.AfterScore {
			if prev := lines[r.LineNo-1]; prev != nil {
				if sentences := splitSentences(prev.Text); len(sentences) > 0 {
					fragment := sentences[len(sentences)-1]
					revised := strings.ReplaceAll(fragment+bracket, period, "")
					c.Revised = &revised
					c.NeighborID = prev.ID
					c.Candidate = &fragment
				}
			}
		} else {
			if next := lines[r.LineNo+1]; next != nil {
				if sentences := splitSentences(next.Text); len(sentences) > 0 {
					fragment := sentences[0]
					revised := strings.ReplaceAll(bracket+fragment, period, "")
					c.Revised = &revised
					c.NeighborID = next.ID
					c.Candidate = &fragment
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// complete stores revised_text on fillers and delete_candidate_word on the
// neighbors they borrowed from. Recomputing is deterministic, so a rerun
// overwrites with identical values.
func (p *Pipeline) complete(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	rows, err := p.store.Segments().ListEnrichment(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list enrichment segments: %w", err)
	}

	plan := planCompletions(rows)
	if len(plan) == 0 {
		return &StageResult{Skipped: true}, nil
	}

	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		for _, c := range plan {
			if err := tx.Segments().SaveRevision(ctx, c.FillerID, c.Revised); err != nil {
				return err
			}
			if c.NeighborID == 0 {
				continue
			}
			if err := tx.Segments().SaveDeleteCandidate(ctx, c.NeighborID, c.Candidate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save completions: %w", err)
	}
	return &StageResult{Rows: len(plan)}, nil
}
