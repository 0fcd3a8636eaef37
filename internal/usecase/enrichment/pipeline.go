package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-enrichment/internal/usecase/errors"
	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
	"github.com/johnquangdev/meeting-enrichment/pkg/jobcontext"
)

// TranscriptPrefix is the object prefix of archived raw transcripts
const TranscriptPrefix = "transcripts/"

// TranscriptKey returns the archive object name of a meeting transcript
func TranscriptKey(m *entities.Meeting) string {
	return TranscriptPrefix + m.ID.String() + ".txt"
}

// StageResult reports what one stage invocation did
type StageResult struct {
	Rows     int
	Skipped  bool
	Speakers int
	Usage    ai.Usage
}

// RunReport summarizes one poll over the pending meetings
type RunReport struct {
	Loaded     int           `json:"loaded"`
	Advanced   int           `json:"advanced"`   // status transitions performed
	Pending    int           `json:"pending"`    // still waiting on the transcription service
	Terminated int           `json:"terminated"` // moved to failed or noresult
	Failed     int           `json:"failed"`     // stage or bookkeeping errors, status unchanged
	Rejected   int           `json:"rejected"`   // unknown stored status
	Usage      ai.Usage      `json:"usage"`
	Duration   time.Duration `json:"duration"`
}

// Options tune the orchestrator
type Options struct {
	BatchLimit    int
	StageTimeout  time.Duration
	StagesPerTick int
	TitleBlocks   bool
	MaxRetries    int
	RetryDelay    time.Duration
}

// DefaultOptions returns the settings used when nothing is configured
func DefaultOptions() Options {
	return Options{
		BatchLimit:    100,
		StageTimeout:  5 * time.Minute,
		StagesPerTick: 1,
		TitleBlocks:   true,
		MaxRetries:    3,
		RetryDelay:    2 * time.Second,
	}
}

// Dependencies are the collaborators of a Pipeline. Only Store is required;
// a nil language-model collaborator makes its stage use the neutral fallback.
type Dependencies struct {
	Store       repositories.Store
	Transcriber Transcriber
	Objects     ObjectStore
	Scorer      Scorer
	Rewriter    Rewriter
	Summarizer  Summarizer
	Logger      *zap.Logger
}

type stageFunc func(ctx context.Context, m *entities.Meeting) (*StageResult, error)

type stage struct {
	name string
	run  stageFunc
}

// Pipeline advances meetings through transcription and the eight
// enrichment stages, one status transition at a time
type Pipeline struct {
	store       repositories.Store
	transcriber Transcriber
	objects     ObjectStore
	scorer      Scorer
	rewriter    Rewriter
	summarizer  Summarizer
	logger      *zap.Logger
	opts        Options
	stages      map[int]stage
}

// NewPipeline wires the stage table
func NewPipeline(deps Dependencies, opts Options) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = DefaultOptions().BatchLimit
	}
	if opts.StagesPerTick <= 0 {
		opts.StagesPerTick = 1
	}

	p := &Pipeline{
		store:       deps.Store,
		transcriber: deps.Transcriber,
		objects:     deps.Objects,
		scorer:      deps.Scorer,
		rewriter:    deps.Rewriter,
		summarizer:  deps.Summarizer,
		logger:      deps.Logger,
		opts:        opts,
	}
	p.stages = map[int]stage{
		1: {name: "segment", run: p.segment},
		2: {name: "score", run: p.score},
		3: {name: "complete", run: p.complete},
		4: {name: "merge", run: p.merge},
		5: {name: "consolidate", run: p.consolidateRuns},
		6: {name: "clean", run: p.clean},
		7: {name: "title", run: p.title},
		8: {name: "materialize", run: p.materialize},
	}
	return p
}

// StageName returns the name of stage n, or "" when n is out of range
func (p *Pipeline) StageName(n int) string {
	return p.stages[n].name
}

// RunOnce loads every non-terminal meeting and moves each one forward. A
// failure on one meeting is logged and counted; it never stops the others.
// Meetings that end the poll in the status they started with are touched so
// the next batch starts with the ones that waited longest.
func (p *Pipeline) RunOnce(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{}

	unknown, err := p.store.Meetings().ListUnknownStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings with unknown status: %w", err)
	}
	for _, m := range unknown {
		report.Rejected++
		p.logger.Error("❌ Rejecting meeting with unknown status",
			zap.String("meeting_id", m.ID.String()),
			zap.String("status", string(m.Status)),
			zap.Error(entities.ErrUnknownStatus),
		)
	}

	meetings, err := p.store.Meetings().ListPending(ctx, p.opts.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending meetings: %w", err)
	}
	report.Loaded = len(meetings)

	for _, m := range meetings {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		before := m.Status
		p.processMeeting(ctx, m, report)
		if m.Status == before {
			if err := p.store.Meetings().Touch(ctx, m.ID, before); err != nil {
				p.logger.Warn("⚠️ Failed to rotate meeting", zap.String("meeting_id", m.ID.String()), zap.Error(err))
			}
		}
	}

	report.Duration = time.Since(start)
	p.logger.Info("✅ Pipeline poll finished",
		zap.Int("loaded", report.Loaded),
		zap.Int("advanced", report.Advanced),
		zap.Int("pending", report.Pending),
		zap.Int("terminated", report.Terminated),
		zap.Int("failed", report.Failed),
		zap.Int("rejected", report.Rejected),
		zap.Int("total_tokens", report.Usage.TotalTokens),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (p *Pipeline) processMeeting(ctx context.Context, m *entities.Meeting, report *RunReport) {
	log := p.logger.With(zap.String("meeting_id", m.ID.String()))
	defer func() {
		if r := recover(); r != nil {
			report.Failed++
			log.Error("❌ Meeting processing panicked",
				zap.String("status", string(m.Status)),
				zap.Any("panic", r),
			)
		}
	}()

	status, err := entities.ParseMeetingStatus(string(m.Status))
	if err != nil {
		report.Rejected++
		log.Error("❌ Rejecting meeting with unknown status", zap.Error(err))
		return
	}
	if status.IsTerminal() {
		return
	}

	if status == entities.MeetingStatusProcessing {
		p.checkTranscription(ctx, m, log, report)
		return
	}

	for i := 0; i < p.opts.StagesPerTick && !status.IsTerminal(); i++ {
		next, ok := p.runStage(ctx, m, status, log, report)
		if !ok {
			return
		}
		status = next
		m.Status = next
	}
}

// runStage executes the stage consuming status and, on success, performs the
// conditional transition to the next status
func (p *Pipeline) runStage(ctx context.Context, m *entities.Meeting, status entities.MeetingStatus, log *zap.Logger, report *RunReport) (entities.MeetingStatus, bool) {
	st, ok := p.stages[status.Stage()]
	if !ok {
		report.Failed++
		log.Error("❌ No stage for status",
			zap.String("status", string(status)),
			zap.Error(usecaseErrors.ErrUnknownStage),
		)
		return "", false
	}
	next, err := status.Next()
	if err != nil {
		report.Failed++
		log.Error("❌ No transition for status", zap.String("status", string(status)), zap.Error(err))
		return "", false
	}

	log = log.With(zap.String("stage", st.name), zap.Int("stage_no", status.Stage()))

	sctx, cancel := jobcontext.StageBegin(ctx, m.ID, st.name, p.opts.StageTimeout)
	defer cancel()
	if p.opts.MaxRetries > 0 {
		sctx = jobcontext.SetMaxRetries(sctx, p.opts.MaxRetries)
	}
	if p.opts.RetryDelay > 0 {
		sctx = jobcontext.SetBaseDelay(sctx, p.opts.RetryDelay)
	}

	var (
		result   = &StageResult{}
		usage    ai.Usage
		attempts int
	)
	started := time.Now()
	err = jobcontext.StageRun(sctx, func(ctx context.Context) error {
		attempts++
		if meta := jobcontext.GetStageMetadata(ctx); meta.RetryAttempt > 0 {
			log.Info("🔄 Retrying stage",
				zap.Int("attempt", meta.RetryAttempt),
				zap.Int("max_retries", meta.MaxRetries),
			)
		}
		r, err := st.run(ctx, m)
		if r != nil {
			usage.Add(r.Usage)
			result = r
		}
		return err
	})
	elapsed := time.Since(started)
	report.Usage.Add(usage)

	if err != nil {
		report.Failed++
		meta := jobcontext.GetStageMetadata(sctx)
		log.Error("❌ Stage failed, will retry next poll",
			zap.String("status", string(status)),
			zap.Int("attempts", attempts),
			zap.Int("max_retries", meta.MaxRetries),
			zap.Time("stage_started", meta.StartTime),
			zap.Int("total_tokens", usage.TotalTokens),
			zap.Error(err),
		)
		return "", false
	}

	advanced, err := p.store.Meetings().AdvanceStatus(ctx, m.ID, status, next)
	if err != nil {
		report.Failed++
		log.Error("❌ Failed to advance meeting status", zap.String("to", string(next)), zap.Error(err))
		return "", false
	}
	if !advanced {
		log.Warn("⚠️ Meeting status changed concurrently, skipping",
			zap.String("from", string(status)),
			zap.String("to", string(next)),
		)
		return "", false
	}
	report.Advanced++

	log.Info("✅ Stage completed",
		zap.String("status", string(next)),
		zap.Int("rows", result.Rows),
		zap.Bool("skipped", result.Skipped),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("duration", elapsed),
	)

	p.recordStage(ctx, m, st.name, elapsed, usage, result.Speakers, log)
	return next, true
}

// recordStage folds stage bookkeeping into the meeting metadata. Failures are
// logged only; the transition already happened.
func (p *Pipeline) recordStage(ctx context.Context, m *entities.Meeting, name string, elapsed time.Duration, usage ai.Usage, speakers int, log *zap.Logger) {
	meta := m.Metadata.Data()
	if meta.StageDurationsMs == nil {
		meta.StageDurationsMs = make(map[string]int64)
	}
	meta.StageDurationsMs[name] = elapsed.Milliseconds()
	meta.PromptTokens += usage.PromptTokens
	meta.CompletionTokens += usage.CompletionTokens
	meta.APICalls += usage.Calls
	if speakers > 0 {
		meta.SpeakerCount = speakers
	}
	m.Metadata = datatypes.NewJSONType(meta)

	if err := p.store.Meetings().UpdateMetadata(ctx, m.ID, meta); err != nil {
		log.Warn("⚠️ Failed to update meeting metadata", zap.Error(err))
	}
}

// checkTranscription polls the upstream job of a processing meeting
func (p *Pipeline) checkTranscription(ctx context.Context, m *entities.Meeting, log *zap.Logger, report *RunReport) {
	jobID := m.JobID()
	if jobID == "" {
		report.Failed++
		log.Error("❌ Processing meeting has no transcription job", zap.Error(usecaseErrors.ErrMissingTranscription))
		return
	}
	if p.transcriber == nil {
		report.Failed++
		log.Error("❌ Cannot check transcription", zap.Error(usecaseErrors.ErrTranscriptionNotConfigured))
		return
	}
	log = log.With(zap.String("job_id", jobID))

	res, err := p.transcriber.Check(ctx, jobID)
	if err != nil {
		report.Pending++
		log.Warn("⚠️ Transcription check failed, retrying next poll", zap.Error(err))
		return
	}

	switch res.State {
	case ai.TranscriptionPending:
		report.Pending++
		log.Debug("Transcription still running")

	case ai.TranscriptionFailed:
		p.terminate(ctx, m, entities.MeetingStatusFailed, res.Error, log, report)

	case ai.TranscriptionNoResult:
		msg := res.Error
		if msg == "" {
			msg = "transcription produced no result"
		}
		p.terminate(ctx, m, entities.MeetingStatusNoResult, msg, log, report)

	case ai.TranscriptionCompleted:
		transcript := Format(fromTranscription(res.Utterances))
		ok, err := p.store.Meetings().CompleteTranscription(ctx, m.ID, transcript)
		if err != nil {
			report.Failed++
			log.Error("❌ Failed to store transcript", zap.Error(err))
			return
		}
		if !ok {
			log.Warn("⚠️ Meeting left processing concurrently, transcript discarded")
			return
		}
		report.Advanced++
		m.Status = entities.MeetingStatusTranscribed
		log.Info("✅ Transcript stored", zap.Int("utterances", len(res.Utterances)))
		p.archiveTranscript(ctx, m, transcript, log)
	}
}

func (p *Pipeline) terminate(ctx context.Context, m *entities.Meeting, status entities.MeetingStatus, msg string, log *zap.Logger, report *RunReport) {
	ok, err := p.store.Meetings().MarkUpstreamTerminal(ctx, m.ID, status, msg)
	if err != nil {
		report.Failed++
		log.Error("❌ Failed to mark meeting", zap.String("status", string(status)), zap.Error(err))
		return
	}
	if !ok {
		log.Warn("⚠️ Meeting left processing concurrently", zap.String("status", string(status)))
		return
	}
	report.Terminated++
	m.Status = status
	log.Warn("⚠️ Transcription ended without transcript",
		zap.String("status", string(status)),
		zap.String("reason", msg),
	)
}

// archiveTranscript keeps a copy of the raw transcript next to the audio.
// The database copy is authoritative, so failures are only logged.
func (p *Pipeline) archiveTranscript(ctx context.Context, m *entities.Meeting, transcript string, log *zap.Logger) {
	if p.objects == nil {
		return
	}
	if err := p.objects.UploadText(ctx, TranscriptKey(m), transcript); err != nil {
		log.Warn("⚠️ Failed to archive transcript", zap.Error(err))
	}
}

// transcriptEscaper keeps utterance text from closing the [text] field of
// the transcript grammar
var transcriptEscaper = strings.NewReplacer("[", "［", "]", "］")

func fromTranscription(in []ai.Utterance) []Utterance {
	out := make([]Utterance, 0, len(in))
	for _, u := range in {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		out = append(out, Utterance{
			Speaker: u.Speaker,
			Text:    transcriptEscaper.Replace(text),
			Offset:  u.Offset,
		})
	}
	return out
}
