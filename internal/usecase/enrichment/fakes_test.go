package enrichment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// memStore is an in-memory repositories.Store. Transactions are not
// isolated; failing writes are injected through failOn.
type memStore struct {
	mu sync.Mutex

	meetings     map[uuid.UUID]*entities.Meeting
	enrichment   []*entities.EnrichmentSegment
	merged       []*entities.MergedSegment
	finals       []*entities.FinalSegment
	conversation []*entities.ConversationSegment
	speakers     []*entities.Speaker
	nextID       uint

	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		meetings: make(map[uuid.UUID]*entities.Meeting),
		failOn:   make(map[string]error),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

func (s *memStore) Meetings() repositories.MeetingRepository           { return memMeetings{s} }
func (s *memStore) Segments() repositories.SegmentRepository           { return memSegments{s} }
func (s *memStore) Speakers() repositories.SpeakerRepository           { return memSpeakers{s} }
func (s *memStore) Conversations() repositories.ConversationRepository { return memConversations{s} }

func (s *memStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return fn(s)
}

func (s *memStore) addMeeting(m *entities.Meeting) *entities.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.meetings[m.ID] = &cp
	return m
}

func (s *memStore) status(id uuid.UUID) entities.MeetingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings[id].Status
}

type memMeetings struct{ s *memStore }

func (r memMeetings) Create(ctx context.Context, m *entities.Meeting) error {
	if err := r.s.fail("meetings.create"); err != nil {
		return err
	}
	r.s.addMeeting(m)
	return nil
}

func (r memMeetings) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.meetings[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r memMeetings) list(keep func(*entities.Meeting) bool) []*entities.Meeting {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Meeting
	for _, m := range r.s.meetings {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r memMeetings) ListPending(ctx context.Context, limit int) ([]*entities.Meeting, error) {
	if err := r.s.fail("meetings.list"); err != nil {
		return nil, err
	}
	pending := make(map[entities.MeetingStatus]bool)
	for _, st := range entities.PendingStatuses() {
		pending[st] = true
	}
	out := r.list(func(m *entities.Meeting) bool { return pending[m.Status] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memMeetings) ListUnknownStatus(ctx context.Context) ([]*entities.Meeting, error) {
	if err := r.s.fail("meetings.list"); err != nil {
		return nil, err
	}
	return r.list(func(m *entities.Meeting) bool {
		_, err := entities.ParseMeetingStatus(string(m.Status))
		return err != nil
	}), nil
}

func (r memMeetings) Touch(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m := r.s.meetings[id]; m != nil && m.Status == status {
		m.UpdatedAt = time.Now()
	}
	return nil
}

func (r memMeetings) ListByStatus(ctx context.Context, status entities.MeetingStatus, limit, offset int) ([]*entities.Meeting, error) {
	out := r.list(func(m *entities.Meeting) bool { return m.Status == status })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memMeetings) AttachJob(ctx context.Context, id uuid.UUID, jobID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.meetings[id].ExternalJobID = &jobID
	return nil
}

func (r memMeetings) CompleteTranscription(ctx context.Context, id uuid.UUID, transcript string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := r.s.meetings[id]
	if m.Status != entities.MeetingStatusProcessing {
		return false, nil
	}
	m.Transcript = transcript
	m.Status = entities.MeetingStatusTranscribed
	m.UpdatedAt = time.Now()
	return true, nil
}

func (r memMeetings) MarkUpstreamTerminal(ctx context.Context, id uuid.UUID, status entities.MeetingStatus, message string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := r.s.meetings[id]
	if m.Status != entities.MeetingStatusProcessing {
		return false, nil
	}
	m.Status = status
	m.ErrorMessage = &message
	m.UpdatedAt = time.Now()
	return true, nil
}

func (r memMeetings) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error) {
	if err := r.s.fail("meetings.advance"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := r.s.meetings[id]
	if m.Status != from {
		return false, nil
	}
	m.Status = to
	m.UpdatedAt = time.Now()
	return true, nil
}

func (r memMeetings) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entities.MeetingMetadata) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.meetings[id].Metadata = datatypes.NewJSONType(metadata)
	return nil
}

type memSegments struct{ s *memStore }

func (r memSegments) CountEnrichment(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	return int64(len(r.listEnrichment(meetingID))), nil
}

func (r memSegments) CreateEnrichment(ctx context.Context, segments []*entities.EnrichmentSegment) error {
	if err := r.s.fail("segments.enrichment"); err != nil {
		return err
	}
	for _, seg := range segments {
		seg.ID = r.s.id()
		r.s.enrichment = append(r.s.enrichment, seg)
	}
	return nil
}

func (r memSegments) listEnrichment(meetingID uuid.UUID) []*entities.EnrichmentSegment {
	var out []*entities.EnrichmentSegment
	for _, seg := range r.s.enrichment {
		if seg.MeetingID == meetingID {
			out = append(out, seg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out
}

func (r memSegments) ListEnrichment(ctx context.Context, meetingID uuid.UUID) ([]*entities.EnrichmentSegment, error) {
	var out []*entities.EnrichmentSegment
	for _, seg := range r.listEnrichment(meetingID) {
		cp := *seg
		out = append(out, &cp)
	}
	return out, nil
}

func (r memSegments) enrichmentByID(id uint) *entities.EnrichmentSegment {
	for _, seg := range r.s.enrichment {
		if seg.ID == id {
			return seg
		}
	}
	return nil
}

func (r memSegments) SaveScores(ctx context.Context, id uint, front, after float64) error {
	if err := r.s.fail("segments.scores"); err != nil {
		return err
	}
	seg := r.enrichmentByID(id)
	seg.FrontScore, seg.AfterScore = &front, &after
	return nil
}

func (r memSegments) SaveRevision(ctx context.Context, id uint, revisedText *string) error {
	r.enrichmentByID(id).RevisedText = revisedText
	return nil
}

func (r memSegments) SaveDeleteCandidate(ctx context.Context, id uint, word *string) error {
	r.enrichmentByID(id).DeleteCandidateWord = word
	return nil
}

func (r memSegments) CountMerged(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	rows, _ := r.ListMerged(ctx, meetingID)
	return int64(len(rows)), nil
}

func (r memSegments) CreateMerged(ctx context.Context, segments []*entities.MergedSegment) error {
	for _, seg := range segments {
		seg.ID = r.s.id()
		r.s.merged = append(r.s.merged, seg)
	}
	return nil
}

func (r memSegments) ListMerged(ctx context.Context, meetingID uuid.UUID) ([]*entities.MergedSegment, error) {
	var out []*entities.MergedSegment
	for _, seg := range r.s.merged {
		if seg.MeetingID == meetingID {
			out = append(out, seg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OffsetSeconds != out[j].OffsetSeconds {
			return out[i].OffsetSeconds < out[j].OffsetSeconds
		}
		return out[i].LineNo < out[j].LineNo
	})
	return out, nil
}

func (r memSegments) CountFinal(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	rows, _ := r.ListFinal(ctx, meetingID)
	return int64(len(rows)), nil
}

func (r memSegments) CreateFinal(ctx context.Context, segments []*entities.FinalSegment) error {
	for _, seg := range segments {
		seg.ID = r.s.id()
		r.s.finals = append(r.s.finals, seg)
	}
	return nil
}

func (r memSegments) ListFinal(ctx context.Context, meetingID uuid.UUID) ([]*entities.FinalSegment, error) {
	var out []*entities.FinalSegment
	for _, seg := range r.s.finals {
		if seg.MeetingID == meetingID {
			out = append(out, seg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OffsetSeconds != out[j].OffsetSeconds {
			return out[i].OffsetSeconds < out[j].OffsetSeconds
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memSegments) finalByID(id uint) *entities.FinalSegment {
	for _, seg := range r.s.finals {
		if seg.ID == id {
			return seg
		}
	}
	return nil
}

func (r memSegments) SaveCleanedText(ctx context.Context, id uint, text string) error {
	seg := r.finalByID(id)
	if seg.CleanedText == nil {
		seg.CleanedText = &text
	}
	return nil
}

func (r memSegments) SaveSummary(ctx context.Context, id uint, summary string) error {
	r.finalByID(id).Summary = &summary
	return nil
}

func (r memSegments) HasSummary(ctx context.Context, meetingID uuid.UUID) (bool, error) {
	rows, _ := r.ListFinal(ctx, meetingID)
	for _, seg := range rows {
		if seg.Summary != nil {
			return true, nil
		}
	}
	return false, nil
}

type memSpeakers struct{ s *memStore }

func (r memSpeakers) FindOrCreate(ctx context.Context, meetingID uuid.UUID, name string, userID uint) (*entities.Speaker, error) {
	for _, sp := range r.s.speakers {
		if sp.MeetingID == meetingID && sp.SpeakerName == name {
			return sp, nil
		}
	}
	sp := &entities.Speaker{ID: r.s.id(), MeetingID: meetingID, SpeakerName: name, UserID: userID}
	r.s.speakers = append(r.s.speakers, sp)
	return sp, nil
}

func (r memSpeakers) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Speaker, error) {
	var out []*entities.Speaker
	for _, sp := range r.s.speakers {
		if sp.MeetingID == meetingID {
			out = append(out, sp)
		}
	}
	return out, nil
}

type memConversations struct{ s *memStore }

func (r memConversations) Count(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	rows, _ := r.ListByMeeting(ctx, meetingID)
	return int64(len(rows)), nil
}

func (r memConversations) CreateBatch(ctx context.Context, rows []*entities.ConversationSegment) error {
	if err := r.s.fail("conversation.create"); err != nil {
		return err
	}
	for _, row := range rows {
		row.ID = r.s.id()
		r.s.conversation = append(r.s.conversation, row)
	}
	return nil
}

func (r memConversations) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ConversationSegment, error) {
	var out []*entities.ConversationSegment
	for _, row := range r.s.conversation {
		if row.MeetingID == meetingID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// fakeChat replays canned model responses in order
type fakeChat struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []string
}

func (c *fakeChat) Chat(ctx context.Context, system, user string, jsonMode bool, maxTokens int) (*ai.ChatResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, user)
	if c.err != nil {
		return &ai.ChatResult{Usage: ai.Usage{PromptTokens: 5, TotalTokens: 5, Calls: 1}}, c.err
	}
	if len(c.responses) == 0 {
		return nil, errors.New("no canned response")
	}
	content := c.responses[0]
	c.responses = c.responses[1:]
	return &ai.ChatResult{
		Content: content,
		Usage:   ai.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12, Calls: 1},
	}, nil
}

// fakeScorer returns fixed scores for every filler
type fakeScorer struct {
	scores Scores
	calls  int
}

func (f *fakeScorer) Score(ctx context.Context, front, middle, back string) (Scores, ai.Usage) {
	f.calls++
	return f.scores, ai.Usage{TotalTokens: 3, Calls: 1}
}

// fakeTranscriber returns a fixed result per job id
type fakeTranscriber struct {
	results   map[string]*ai.TranscriptionResult
	checkErr  error
	submitErr error
	submitted []string
}

func (f *fakeTranscriber) Submit(ctx context.Context, audioURL string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, audioURL)
	return "job-1", nil
}

func (f *fakeTranscriber) Check(ctx context.Context, jobID string) (*ai.TranscriptionResult, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	res, ok := f.results[jobID]
	if !ok {
		return &ai.TranscriptionResult{State: ai.TranscriptionPending}, nil
	}
	return res, nil
}

// fakeObjects is an ObjectStore over a map
type fakeObjects struct {
	objects map[string]string
}

func (f *fakeObjects) Exists(ctx context.Context, objectName string) (bool, error) {
	_, ok := f.objects[objectName]
	return ok, nil
}

func (f *fakeObjects) PresignAudio(ctx context.Context, objectName string) (string, error) {
	return "https://objects.test/" + objectName + "?sig=1", nil
}

func (f *fakeObjects) UploadText(ctx context.Context, objectName string, content string) error {
	f.objects[objectName] = content
	return nil
}
