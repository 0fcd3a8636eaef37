package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPrompts(t *testing.T) {
	p := DefaultPrompts()
	if p.Naturalness.System == "" || p.Rewrite.System == "" || p.Title.System == "" {
		t.Fatalf("embedded prompts are incomplete: %+v", p)
	}
	if p.Title.OpeningHint == "" || p.Title.ClosingHint == "" {
		t.Fatalf("expected title hints")
	}
}

func TestPromptRender(t *testing.T) {
	p := Prompt{User: "前: {{front}} / 中: {{middle}} / 後: {{back}}"}
	got := p.Render(map[string]string{"front": "a", "middle": "b", "back": "c"})
	if got != "前: a / 中: b / 後: c" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestLoadPromptsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("rewrite:\n  system: custom\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.Rewrite.System != "custom" {
		t.Fatalf("override not applied: %q", p.Rewrite.System)
	}
	if !strings.Contains(p.Rewrite.User, "{{text}}") {
		t.Fatalf("default user prompt lost: %q", p.Rewrite.User)
	}
	if p.Naturalness.System != DefaultPrompts().Naturalness.System {
		t.Fatalf("untouched prompt changed")
	}

	if _, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestVerifyHMAC(t *testing.T) {
	payload := []byte(`{"user_id":1}`)
	sig := Sign("secret", payload)
	if !VerifyHMAC("secret", payload, sig) {
		t.Fatalf("valid signature rejected")
	}
	if VerifyHMAC("other", payload, sig) {
		t.Fatalf("signature with wrong secret accepted")
	}
	if VerifyHMAC("", payload, sig) || VerifyHMAC("secret", payload, "") {
		t.Fatalf("empty secret or signature accepted")
	}
}
