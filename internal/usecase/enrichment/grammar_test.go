package enrichment

import (
	"reflect"
	"testing"
)

func TestParseTokens(t *testing.T) {
	got := Parse("(Speaker1)[えっと、40分。はい、大丈夫です。](0.4) (Speaker2)[ありがとうございます。](2.0)")
	want := []Utterance{
		{Speaker: 1, Text: "えっと、40分。はい、大丈夫です。", Offset: 0.4},
		{Speaker: 2, Text: "ありがとうございます。", Offset: 2.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected utterances %+v", got)
	}
}

func TestParseTokens_MissingOffsetDefaultsToZero(t *testing.T) {
	got := Parse("(Speaker3)[はい。]")
	if len(got) != 1 || got[0].Speaker != 3 || got[0].Offset != 0 {
		t.Fatalf("unexpected utterances %+v", got)
	}
}

func TestParseLines(t *testing.T) {
	got := Parse("Speaker1: こんにちは(1.5)\nSpeaker2：よろしくお願いします(3)\n")
	want := []Utterance{
		{Speaker: 1, Text: "こんにちは", Offset: 1.5},
		{Speaker: 2, Text: "よろしくお願いします", Offset: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected utterances %+v", got)
	}
}

func TestParseLoose_JoinsContinuationLines(t *testing.T) {
	text := "[Speaker1] first part\nsecond part (12.5)\n話者2：続きです\n"
	got := Parse(text)
	want := []Utterance{
		{Speaker: 1, Text: "first part second part", Offset: 12.5},
		{Speaker: 2, Text: "続きです", Offset: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected utterances %+v", got)
	}
}

func TestParse_Garbage(t *testing.T) {
	if got := Parse("no speakers here"); len(got) != 0 {
		t.Fatalf("expected no utterances, got %+v", got)
	}
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected no utterances, got %+v", got)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	in := []Utterance{
		{Speaker: 1, Text: "はい、大丈夫です。", Offset: 0.4},
		{Speaker: 12, Text: "ok", Offset: 125},
	}
	text := Format(in)
	if text != "(Speaker1)[はい、大丈夫です。](0.4) (Speaker12)[ok](125)" {
		t.Fatalf("unexpected format %q", text)
	}
	if got := Parse(text); !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip mismatch %+v", got)
	}
}

func TestIsFiller(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"はい。", true},
		{"（うん）", true},
		{"えっと、40分。はい、大丈夫です。", false},
		{"ありがとうございます。", false},
		{"123456789", true},
		{"1234567890", false},
	}
	for _, tc := range cases {
		if got := isFiller(tc.text); got != tc.want {
			t.Fatalf("isFiller(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("一つ目。 二つ目。。三つ目")
	want := []string{"一つ目", "二つ目", "三つ目"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences %q", got)
	}
}

func TestStripEnclosingAndTrimPunct(t *testing.T) {
	if got := stripEnclosing("（（はい））"); got != "はい" {
		t.Fatalf("unexpected %q", got)
	}
	if got := trimPunct("、そうですね。"); got != "そうですね" {
		t.Fatalf("unexpected %q", got)
	}
}
