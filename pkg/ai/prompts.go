package ai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompt is a system + user prompt pair. User may contain {{name}} placeholders.
type Prompt struct {
	System      string `yaml:"system"`
	User        string `yaml:"user"`
	OpeningHint string `yaml:"opening_hint,omitempty"`
	ClosingHint string `yaml:"closing_hint,omitempty"`
}

// Prompts is the prompt catalogue used by the scorer, rewriter and summarizer
type Prompts struct {
	Naturalness Prompt `yaml:"naturalness"`
	Rewrite     Prompt `yaml:"rewrite"`
	Title       Prompt `yaml:"title"`
}

// DefaultPrompts returns the embedded catalogue
func DefaultPrompts() *Prompts {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml is invalid: %v", err))
	}
	return &p
}

// LoadPrompts reads a catalogue from path. Prompts missing from the file
// keep their embedded defaults. An empty path returns the defaults.
func LoadPrompts(path string) (*Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	p.Naturalness = merge(p.Naturalness, override.Naturalness)
	p.Rewrite = merge(p.Rewrite, override.Rewrite)
	p.Title = merge(p.Title, override.Title)
	return p, nil
}

func merge(base, override Prompt) Prompt {
	if override.System != "" {
		base.System = override.System
	}
	if override.User != "" {
		base.User = override.User
	}
	if override.OpeningHint != "" {
		base.OpeningHint = override.OpeningHint
	}
	if override.ClosingHint != "" {
		base.ClosingHint = override.ClosingHint
	}
	return base
}

// Render substitutes {{key}} placeholders in the user prompt
func (p Prompt) Render(vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(p.User))
}
