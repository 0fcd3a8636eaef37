package enrichment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

const (
	blockSeconds  = 300
	titleMaxRunes = 20

	openingKeyword = "アイスブレイク"
	openingLabel   = "アイスブレイク"
	closingKeyword = "次のステップ"
	closingLabel   = "まとめ・次のステップ"
)

// groupBlocks splits offset-ordered rows into 300 second windows. Empty
// windows produce no block.
func groupBlocks(rows []*entities.FinalSegment) [][]*entities.FinalSegment {
	var (
		blocks  [][]*entities.FinalSegment
		current int
	)
	for _, r := range rows {
		key := int(math.Floor(r.OffsetSeconds / blockSeconds))
		if len(blocks) == 0 || key != current {
			blocks = append(blocks, nil)
			current = key
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], r)
	}
	return blocks
}

// blockText renders a block as "SpeakerN: text" lines
func blockText(block []*entities.FinalSegment) string {
	lines := make([]string, 0, len(block))
	for _, r := range block {
		lines = append(lines, fmt.Sprintf("%s: %s", entities.SpeakerName(r.Speaker), r.DisplayText()))
	}
	return strings.Join(lines, "\n")
}

// fallbackTitle labels a block when the summarizer failed or is not configured
func fallbackTitle(index, total int) string {
	switch {
	case index == 1:
		return openingLabel
	case index == total:
		return closingLabel
	}
	return fmt.Sprintf("Block %d", index)
}

// resolveTitle applies the opening/closing bias. A canonical label only
// replaces the generated title when the title already mentions its keyword.
func resolveTitle(generated string, err error, index, total int) string {
	generated = strings.TrimSpace(generated)
	if err != nil || generated == "" {
		return fallbackTitle(index, total)
	}
	if index == 1 && strings.Contains(generated, openingKeyword) {
		return openingLabel
	}
	if index == total && strings.Contains(generated, closingKeyword) {
		return closingLabel
	}
	return truncateRunes(generated, titleMaxRunes)
}

// title writes a summary onto the first row of every time block
func (p *Pipeline) title(ctx context.Context, m *entities.Meeting) (*StageResult, error) {
	if !p.opts.TitleBlocks {
		return &StageResult{Skipped: true}, nil
	}

	done, err := p.store.Segments().HasSummary(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("check summaries: %w", err)
	}
	if done {
		return &StageResult{Skipped: true}, nil
	}

	rows, err := p.store.Segments().ListFinal(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list final segments: %w", err)
	}

	blocks := groupBlocks(rows)
	titles := make([]string, len(blocks))
	var usage ai.Usage
	for i, block := range blocks {
		index, total := i+1, len(blocks)
		if p.summarizer == nil {
			titles[i] = fallbackTitle(index, total)
			continue
		}
		generated, u, err := p.summarizer.Summarize(ctx, blockText(block), index, total)
		usage.Add(u)
		if err != nil {
			p.logger.Warn("⚠️ Block titling failed, using fallback label",
				zap.String("meeting_id", m.ID.String()),
				zap.Int("block", index),
				zap.Error(err),
			)
		}
		titles[i] = resolveTitle(generated, err, index, total)
	}

	err = p.store.Transaction(ctx, func(tx repositories.Store) error {
		for i, block := range blocks {
			if err := tx.Segments().SaveSummary(ctx, block[0].ID, titles[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &StageResult{Usage: usage}, fmt.Errorf("save summaries: %w", err)
	}
	return &StageResult{Rows: len(blocks), Usage: usage}, nil
}
