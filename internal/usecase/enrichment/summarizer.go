package enrichment

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// ErrEmptyTitle is returned when the model produced no usable title
var ErrEmptyTitle = errors.New("empty title")

// Summarizer titles one time block of a meeting. index is 1-based.
type Summarizer interface {
	Summarize(ctx context.Context, blockText string, index, total int) (string, ai.Usage, error)
}

// LLMSummarizer asks a chat model for a short block title
type LLMSummarizer struct {
	client ChatClient
	prompt ai.Prompt
}

// NewLLMSummarizer creates a summarizer over client
func NewLLMSummarizer(client ChatClient, prompts *ai.Prompts) *LLMSummarizer {
	if prompts == nil {
		prompts = ai.DefaultPrompts()
	}
	return &LLMSummarizer{client: client, prompt: prompts.Title}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, blockText string, index, total int) (string, ai.Usage, error) {
	hint := ""
	switch {
	case index == 1:
		hint = s.prompt.OpeningHint
	case index == total:
		hint = s.prompt.ClosingHint
	}

	user := s.prompt.Render(map[string]string{
		"index": strconv.Itoa(index),
		"total": strconv.Itoa(total),
		"hint":  hint,
		"text":  blockText,
	})
	res, err := s.client.Chat(ctx, s.prompt.System, user, false, 64)
	var usage ai.Usage
	if res != nil {
		usage = res.Usage
	}
	if err != nil {
		return "", usage, err
	}

	title := strings.Trim(strings.TrimSpace(res.Content), "\"'「」『』")
	if title == "" {
		return "", usage, ErrEmptyTitle
	}
	return title, usage, nil
}
