package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// clean stores a filler-free rewrite of every final segment as cleaned_text.
// merged_text is never touched; a failed rewrite keeps the merged text.
func (p *Pipeline) clean(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	rows, err := p.store.Segments().ListFinal(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list final segments: %w", err)
	}

	type cleaned struct {
		id   uint
		text string
	}
	var (
		pending []cleaned
		usage   ai.Usage
	)
	for _, r := range rows {
		if r.CleanedText != nil {
			continue
		}
		text := r.MergedText
		if p.rewriter != nil {
			out, u := p.rewriter.Rewrite(ctx, r.MergedText)
			usage.Add(u)
			if strings.TrimSpace(out) != "" {
				text = out
			}
		}
		pending = append(pending, cleaned{id: r.ID, text: text})
	}
	if len(pending) == 0 {
		return &StageResult{Skipped: true, Usage: usage}, nil
	}

	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		for _, c := range pending {
			if err := tx.Segments().SaveCleanedText(ctx, c.id, c.text); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &StageResult{Usage: usage}, fmt.Errorf("save cleaned text: %w", err)
	}
	return &StageResult{Rows: len(pending), Usage: usage}, nil
}
