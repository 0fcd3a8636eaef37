package enrichment

import (
	"context"
	"fmt"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// scoreRequest is the scorer input for one filler row
type scoreRequest struct {
	ID     uint
	Front  string
	Middle string
	Back   string
}

func byLine(rows []*entities.EnrichmentSegment) map[int]*entities.EnrichmentSegment {
	m := make(map[int]*entities.EnrichmentSegment, len(rows))
	for _, r := range rows {
		m[r.LineNo] = r
	}
	return m
}

// scoreRequests builds one request per filler row that has no scores yet
func scoreRequests(rows []*entities.EnrichmentSegment) []scoreRequest {
	lines := byLine(rows)
	var out []scoreRequest
	for _, r := range rows {
		if !r.IsFiller || r.IsScored() {
			continue
		}
		req := scoreRequest{ID: r.ID, Middle: stripEnclosing(r.Text)}
		if prev := lines[r.LineNo-1]; prev != nil {
			req.Front = trimPunct(prev.Text)
		}
		if next := lines[r.LineNo+1]; next != nil {
			req.Back = trimPunct(next.Text)
		}
		out = append(out, req)
	}
	return out
}

// score rates each filler's connection to its neighbors
func (p *Pipeline) score(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	rows, err := p.store.Segments().ListEnrichment(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list enrichment segments: %w", err)
	}

	reqs := scoreRequests(rows)
	if len(reqs) == 0 {
		return &StageResult{Skipped: true}, nil
	}

	var usage ai.Usage
	scores := make([]Scores, len(reqs))
	for i, req := range reqs {
		s, u := NeutralScores, ai.Usage{}
		if p.scorer != nil {
			s, u = p.scorer.Score(ctx, req.Front, req.Middle, req.Back)
		}
		scores[i] = s
		usage.Add(u)
	}

	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		for i, req := range reqs {
			if err := tx.Segments().SaveScores(ctx, req.ID, scores[i].Front, scores[i].Back); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &StageResult{Usage: usage}, fmt.Errorf("save scores: %w", err)
	}
	return &StageResult{Rows: len(reqs), Usage: usage}, nil
}
