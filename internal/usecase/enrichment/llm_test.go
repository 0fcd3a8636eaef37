package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLLMScorer(t *testing.T) {
	chat := &fakeChat{responses: []string{"```json\n{\"front_score\": 0.9, \"back_score\": 0.2}\n```"}}
	scorer := NewLLMScorer(chat, nil, nil)

	scores, usage := scorer.Score(context.Background(), "前の文", "はい", "後の文")
	if scores.Front != 0.9 || scores.Back != 0.2 {
		t.Fatalf("unexpected scores %+v", scores)
	}
	if usage.Calls != 1 || usage.TotalTokens != 12 {
		t.Fatalf("unexpected usage %+v", usage)
	}
	if len(chat.calls) != 1 || !strings.Contains(chat.calls[0], "前の文") || !strings.Contains(chat.calls[0], "後の文") {
		t.Fatalf("prompt must carry both neighbors: %q", chat.calls)
	}
}

func TestLLMScorer_DegradesToNeutral(t *testing.T) {
	cases := map[string]*fakeChat{
		"transport error": {err: errors.New("boom")},
		"not json":        {responses: []string{"I think the front fits"}},
		"out of range":    {responses: []string{`{"front_score": 1.5, "back_score": 0.2}`}},
		"missing field":   {responses: []string{`{"front_score": 0.3}`}},
	}
	for name, chat := range cases {
		t.Run(name, func(t *testing.T) {
			scores, _ := NewLLMScorer(chat, nil, nil).Score(context.Background(), "a", "b", "c")
			if scores != NeutralScores {
				t.Fatalf("expected neutral scores got %+v", scores)
			}
		})
	}
}

func TestLLMScorer_ErrorUsageCounted(t *testing.T) {
	_, usage := NewLLMScorer(&fakeChat{err: errors.New("boom")}, nil, nil).Score(context.Background(), "a", "b", "c")
	if usage.PromptTokens != 5 {
		t.Fatalf("tokens spent on a failed call must be reported, got %+v", usage)
	}
}

func TestLLMRewriter(t *testing.T) {
	rw := NewLLMRewriter(&fakeChat{responses: []string{"  予算は40分です。 "}}, nil, nil)
	out, usage := rw.Rewrite(context.Background(), "えっと、予算は、まあ40分です。")
	if out != "予算は40分です。" || usage.Calls != 1 {
		t.Fatalf("unexpected rewrite %q %+v", out, usage)
	}

	for _, chat := range []*fakeChat{{err: errors.New("boom")}, {responses: []string{"   "}}} {
		out, _ := NewLLMRewriter(chat, nil, nil).Rewrite(context.Background(), "元のテキスト。")
		if out != "元のテキスト。" {
			t.Fatalf("failed rewrite must return the input, got %q", out)
		}
	}
}

func TestLLMSummarizer_Hints(t *testing.T) {
	chat := &fakeChat{responses: []string{"「予算の確認」", "中盤", "まとめ"}}
	s := NewLLMSummarizer(chat, nil)

	title, _, err := s.Summarize(context.Background(), "Speaker1: テキスト", 1, 3)
	if err != nil || title != "予算の確認" {
		t.Fatalf("unexpected title %q err %v", title, err)
	}
	if _, _, err := s.Summarize(context.Background(), "Speaker1: テキスト", 2, 3); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if _, _, err := s.Summarize(context.Background(), "Speaker1: テキスト", 3, 3); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	p := s.prompt
	if p.OpeningHint == "" || p.ClosingHint == "" {
		t.Fatalf("default prompts must carry hints")
	}
	if !strings.Contains(chat.calls[0], p.OpeningHint) {
		t.Fatalf("first block must carry the opening hint")
	}
	if strings.Contains(chat.calls[1], p.OpeningHint) || strings.Contains(chat.calls[1], p.ClosingHint) {
		t.Fatalf("middle block must carry no hint")
	}
	if !strings.Contains(chat.calls[2], p.ClosingHint) {
		t.Fatalf("last block must carry the closing hint")
	}
}

func TestLLMSummarizer_EmptyTitle(t *testing.T) {
	_, _, err := NewLLMSummarizer(&fakeChat{responses: []string{"「」"}}, nil).Summarize(context.Background(), "x", 1, 1)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle got %v", err)
	}
}
