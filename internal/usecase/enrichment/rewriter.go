package enrichment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// Rewriter removes discourse fillers from one utterance. It never fails and
// never returns an empty string: the input is returned on any problem.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, ai.Usage)
}

// LLMRewriter asks a chat model to strip fillers
type LLMRewriter struct {
	client ChatClient
	prompt ai.Prompt
	logger *zap.Logger
}

// NewLLMRewriter creates a rewriter over client
func NewLLMRewriter(client ChatClient, prompts *ai.Prompts, logger *zap.Logger) *LLMRewriter {
	if prompts == nil {
		prompts = ai.DefaultPrompts()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMRewriter{client: client, prompt: prompts.Rewrite, logger: logger}
}

func (r *LLMRewriter) Rewrite(ctx context.Context, text string) (string, ai.Usage) {
	if strings.TrimSpace(text) == "" {
		return text, ai.Usage{}
	}

	user := r.prompt.Render(map[string]string{"text": text})
	res, err := r.client.Chat(ctx, r.prompt.System, user, false, 1024)
	var usage ai.Usage
	if res != nil {
		usage = res.Usage
	}
	if err != nil {
		r.logger.Warn("⚠️ Filler rewrite failed, keeping original text", zap.Error(err))
		return text, usage
	}

	out := strings.TrimSpace(res.Content)
	if out == "" {
		return text, usage
	}
	return out, usage
}
