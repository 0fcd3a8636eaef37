package ai

// Usage counts language-model tokens. Every client call returns its own
// Usage; callers sum them into a run-scoped total.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	Calls            int `json:"-"`
}

// Add accumulates other into u
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.Calls += other.Calls
}

// IsZero reports whether no call was recorded
func (u Usage) IsZero() bool {
	return u == Usage{}
}
