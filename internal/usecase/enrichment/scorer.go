package enrichment

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// neutralScore is used for both directions whenever scoring fails
const neutralScore = 0.5

// Scores rates how naturally a filler attaches to each neighbor
type Scores struct {
	Front float64
	Back  float64
}

// NeutralScores is the degraded result of a failed scoring call
var NeutralScores = Scores{Front: neutralScore, Back: neutralScore}

// Scorer rates "front+middle" against "middle+back". It never fails:
// any problem degrades to NeutralScores.
type Scorer interface {
	Score(ctx context.Context, front, middle, back string) (Scores, ai.Usage)
}

// LLMScorer asks a chat model for a JSON score pair
type LLMScorer struct {
	client ChatClient
	prompt ai.Prompt
	logger *zap.Logger
}

// NewLLMScorer creates a scorer over client
func NewLLMScorer(client ChatClient, prompts *ai.Prompts, logger *zap.Logger) *LLMScorer {
	if prompts == nil {
		prompts = ai.DefaultPrompts()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMScorer{client: client, prompt: prompts.Naturalness, logger: logger}
}

func (s *LLMScorer) Score(ctx context.Context, front, middle, back string) (Scores, ai.Usage) {
	user := s.prompt.Render(map[string]string{
		"front":  front,
		"middle": middle,
		"back":   back,
	})
	res, err := s.client.Chat(ctx, s.prompt.System, user, true, 64)
	var usage ai.Usage
	if res != nil {
		usage = res.Usage
	}
	if err != nil {
		s.logger.Warn("⚠️ Naturalness scoring failed, using neutral scores", zap.Error(err))
		return NeutralScores, usage
	}

	scores, ok := parseScores(res.Content)
	if !ok {
		s.logger.Warn("⚠️ Unparsable naturalness scores, using neutral scores",
			zap.String("content", truncateRunes(res.Content, 200)),
		)
		return NeutralScores, usage
	}
	return scores, usage
}

// parseScores reads {"front_score": x, "back_score": y} from content, which
// may be wrapped in prose or a code fence. Both values must be in [0,1].
func parseScores(content string) (Scores, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Scores{}, false
	}

	var raw struct {
		Front *float64 `json:"front_score"`
		Back  *float64 `json:"back_score"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return Scores{}, false
	}
	if raw.Front == nil || raw.Back == nil {
		return Scores{}, false
	}
	if !inUnitRange(*raw.Front) || !inUnitRange(*raw.Back) {
		return Scores{}, false
	}
	return Scores{Front: *raw.Front, Back: *raw.Back}, true
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
