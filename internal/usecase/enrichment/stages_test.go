package enrichment

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
)

func scored(rows []*entities.EnrichmentSegment, line int, front, back float64) {
	for _, r := range rows {
		if r.LineNo == line {
			r.FrontScore, r.AfterScore = &front, &back
		}
	}
}

func assignIDs(rows []*entities.EnrichmentSegment) {
	for i, r := range rows {
		r.ID = uint(i + 1)
	}
}

const fillerTranscript = "(Speaker1)[今日の議題は予算です。よろしくお願いします。](0.0) " +
	"(Speaker2)[はい。](5.0) " +
	"(Speaker1)[では始めましょう。次に進みます。](8.0)"

func fillerRows(t *testing.T) []*entities.EnrichmentSegment {
	t.Helper()
	rows := buildEnrichmentSegments(uuid.New(), Parse(fillerTranscript))
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows got %d", len(rows))
	}
	assignIDs(rows)
	return rows
}

func TestBuildEnrichmentSegments(t *testing.T) {
	rows := fillerRows(t)
	for i, want := range []bool{false, true, false} {
		if rows[i].LineNo != i+1 {
			t.Fatalf("row %d has line %d", i, rows[i].LineNo)
		}
		if rows[i].IsFiller != want {
			t.Fatalf("row %d filler=%v want %v", i, rows[i].IsFiller, want)
		}
	}
	if rows[1].Speaker != 2 || rows[1].OffsetSeconds != 5.0 {
		t.Fatalf("unexpected filler row %+v", rows[1])
	}
}

func TestScoreRequests(t *testing.T) {
	rows := fillerRows(t)
	reqs := scoreRequests(rows)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request got %d", len(reqs))
	}
	req := reqs[0]
	if req.ID != rows[1].ID || req.Middle != "はい。" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Front != "今日の議題は予算です。よろしくお願いします" || req.Back != "では始めましょう。次に進みます" {
		t.Fatalf("unexpected neighbors %+v", req)
	}

	scored(rows, 2, 0.1, 0.2)
	if reqs := scoreRequests(rows); len(reqs) != 0 {
		t.Fatalf("scored rows must not be requested again")
	}
}

func TestPlanCompletions_FrontNeighbor(t *testing.T) {
	rows := fillerRows(t)
	scored(rows, 2, 0.9, 0.2)

	plan := planCompletions(rows)
	if len(plan) != 1 {
		t.Fatalf("expected 1 completion got %d", len(plan))
	}
	c := plan[0]
	if c.NeighborID != rows[0].ID {
		t.Fatalf("expected front neighbor, got %d", c.NeighborID)
	}
	if c.Candidate == nil || *c.Candidate != "よろしくお願いします" {
		t.Fatalf("unexpected candidate %v", c.Candidate)
	}
	if c.Revised == nil || *c.Revised != "よろしくお願いしますはい" {
		t.Fatalf("unexpected revision %v", c.Revised)
	}
}

func TestPlanCompletions_TieGoesFront(t *testing.T) {
	rows := fillerRows(t)
	scored(rows, 2, 0.5, 0.5)

	plan := planCompletions(rows)
	if len(plan) != 1 || plan[0].NeighborID != rows[0].ID {
		t.Fatalf("tie must adopt the front neighbor: %+v", plan)
	}
}

func TestPlanCompletions_BackNeighbor(t *testing.T) {
	rows := fillerRows(t)
	scored(rows, 2, 0.1, 0.9)

	plan := planCompletions(rows)
	if len(plan) != 1 || plan[0].NeighborID != rows[2].ID {
		t.Fatalf("expected back neighbor: %+v", plan)
	}
	if *plan[0].Candidate != "では始めましょう" || *plan[0].Revised != "はいでは始めましょう" {
		t.Fatalf("unexpected completion %q %q", *plan[0].Candidate, *plan[0].Revised)
	}
}

func TestPlanCompletions_NoNeighbor(t *testing.T) {
	rows := buildEnrichmentSegments(uuid.New(), Parse("(Speaker1)[はい。](0)"))
	assignIDs(rows)
	scored(rows, 1, 0.9, 0.1)

	plan := planCompletions(rows)
	if len(plan) != 1 || plan[0].NeighborID != 0 || plan[0].Revised != nil {
		t.Fatalf("expected empty completion: %+v", plan)
	}
}

func applyPlan(rows []*entities.EnrichmentSegment, plan []completion) {
	for _, c := range plan {
		for _, r := range rows {
			if r.ID == c.FillerID {
				r.RevisedText = c.Revised
			}
			if c.NeighborID != 0 && r.ID == c.NeighborID {
				r.DeleteCandidateWord = c.Candidate
			}
		}
	}
}

func TestMergeSegments_FrontCompletion(t *testing.T) {
	rows := fillerRows(t)
	scored(rows, 2, 0.9, 0.2)
	applyPlan(rows, planCompletions(rows))

	merged := mergeSegments(rows[0].MeetingID, rows)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged rows got %d", len(merged))
	}
	if merged[0].MergedText != "今日の議題は予算です。。(よろしくお願いしますはい)" {
		t.Fatalf("unexpected merged text %q", merged[0].MergedText)
	}
	if merged[0].SourceSegmentIDs != "1,2" || merged[1].SourceSegmentIDs != "3" {
		t.Fatalf("unexpected sources %q %q", merged[0].SourceSegmentIDs, merged[1].SourceSegmentIDs)
	}
	if merged[0].OriginalText != rows[0].Text {
		t.Fatalf("original text must be kept")
	}
}

func TestMergeSegments_BackCompletion(t *testing.T) {
	rows := fillerRows(t)
	scored(rows, 2, 0.1, 0.9)
	applyPlan(rows, planCompletions(rows))

	merged := mergeSegments(rows[0].MeetingID, rows)
	if merged[0].MergedText != "今日の議題は予算です。よろしくお願いします。(はいでは始めましょう)" {
		t.Fatalf("unexpected first row %q", merged[0].MergedText)
	}
	if merged[1].MergedText != "。次に進みます。" {
		t.Fatalf("unexpected third row %q", merged[1].MergedText)
	}
}

func TestConsolidate_DedupesWithinRunOnly(t *testing.T) {
	id := uuid.New()
	merged := []*entities.MergedSegment{
		{Speaker: 1, OffsetSeconds: 1, MergedText: "A。B。"},
		{Speaker: 1, OffsetSeconds: 2, MergedText: "B。C。"},
		{Speaker: 2, OffsetSeconds: 3, MergedText: "A。"},
		{Speaker: 1, OffsetSeconds: 4, MergedText: "A"},
	}
	finals := consolidate(id, merged)
	if len(finals) != 3 {
		t.Fatalf("expected 3 runs got %d", len(finals))
	}
	want := []string{"A。 B。 C。", "A。", "A。"}
	for i, f := range finals {
		if f.MergedText != want[i] {
			t.Fatalf("run %d: got %q want %q", i, f.MergedText, want[i])
		}
	}
	if finals[0].OffsetSeconds != 1 || finals[2].OffsetSeconds != 4 {
		t.Fatalf("runs must carry their first offset")
	}
}

func TestConsolidate_SkipsEmptyRuns(t *testing.T) {
	finals := consolidate(uuid.New(), []*entities.MergedSegment{
		{Speaker: 1, MergedText: "。。"},
		{Speaker: 2, MergedText: "はい。"},
	})
	if len(finals) != 1 || finals[0].Speaker != 2 {
		t.Fatalf("unexpected finals %+v", finals)
	}
}

func TestGroupBlocks(t *testing.T) {
	rows := []*entities.FinalSegment{
		{ID: 1, OffsetSeconds: 0},
		{ID: 2, OffsetSeconds: 299.9},
		{ID: 3, OffsetSeconds: 300},
		{ID: 4, OffsetSeconds: 1000},
	}
	blocks := groupBlocks(rows)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks got %d", len(blocks))
	}
	if len(blocks[0]) != 2 || blocks[1][0].ID != 3 || blocks[2][0].ID != 4 {
		t.Fatalf("unexpected grouping")
	}
}

func TestResolveTitle(t *testing.T) {
	cases := []struct {
		name      string
		generated string
		err       error
		index     int
		total     int
		want      string
	}{
		{"opening keyword", "アイスブレイクと自己紹介", nil, 1, 3, "アイスブレイク"},
		{"opening without keyword", "予算の確認", nil, 1, 3, "予算の確認"},
		{"closing keyword", "次のステップの確認", nil, 3, 3, "まとめ・次のステップ"},
		{"middle keeps keyword", "次のステップ", nil, 2, 3, "次のステップ"},
		{"failure first", "", errors.New("boom"), 1, 3, "アイスブレイク"},
		{"failure last", "", errors.New("boom"), 3, 3, "まとめ・次のステップ"},
		{"failure middle", "", errors.New("boom"), 2, 3, "Block 2"},
		{"truncated", "一二三四五六七八九十一二三四五六七八九十超過", nil, 2, 3, "一二三四五六七八九十一二三四五六七八九十"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveTitle(tc.generated, tc.err, tc.index, tc.total); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestBuildConversation_SummaryBeforeSegment(t *testing.T) {
	m := entities.NewMeeting(7, "weekly", "audio/a.mp3")
	title := "アイスブレイク"
	cleaned := "こんにちは。"
	finals := []*entities.FinalSegment{
		{ID: 1, Speaker: 1, MergedText: "えっと、こんにちは。", CleanedText: &cleaned, OffsetSeconds: 0.4, Summary: &title},
		{ID: 2, Speaker: 2, MergedText: "どうも。", OffsetSeconds: 2},
	}
	rows := buildConversation(m, finals, map[int]uint{1: 11, 2: 12})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows got %d", len(rows))
	}
	if !rows[0].IsSummary() || rows[0].Text != title || rows[0].Sequence != 1 {
		t.Fatalf("unexpected sentinel %+v", rows[0])
	}
	if rows[1].SpeakerID != 11 || rows[1].UserID != 7 || rows[1].Text != cleaned || rows[1].Sequence != 2 {
		t.Fatalf("unexpected first segment %+v", rows[1])
	}
	if rows[2].Text != "どうも。" || rows[2].Sequence != 3 {
		t.Fatalf("unmerged rows must fall back to merged text: %+v", rows[2])
	}
}
