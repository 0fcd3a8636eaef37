package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

// TranscriptionState is the normalized state of an upstream job
type TranscriptionState int

const (
	TranscriptionPending TranscriptionState = iota
	TranscriptionCompleted
	TranscriptionFailed
	TranscriptionNoResult
)

func (s TranscriptionState) String() string {
	switch s {
	case TranscriptionCompleted:
		return "completed"
	case TranscriptionFailed:
		return "failed"
	case TranscriptionNoResult:
		return "noresult"
	}
	return "pending"
}

// Utterance is one diarized phrase of a finished transcript
type Utterance struct {
	Speaker int
	Text    string
	Offset  float64 // seconds
}

// TranscriptionResult is the outcome of checking a job
type TranscriptionResult struct {
	State      TranscriptionState
	Utterances []Utterance
	Error      string
}

// AssemblyAIClient wraps the official AssemblyAI SDK
type AssemblyAIClient struct {
	client     *aai.Client
	language   string
	maxElapsed time.Duration
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	c := &AssemblyAIClient{
		language:   "ja",
		maxElapsed: 30 * time.Second,
	}

	var apiKey, baseURL string
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
		if cfg.LanguageCode != "" {
			c.language = cfg.LanguageCode
		}
		if cfg.MaxElapsed > 0 {
			c.maxElapsed = cfg.MaxElapsed
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}
	c.client = aai.NewClientWithOptions(opts...)
	return c
}

// Submit starts a diarized transcription of audioURL and returns the job id
func (c *AssemblyAIClient) Submit(ctx context.Context, audioURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(c.language),
		SpeakerLabels: aai.Bool(true),
	}

	var jobID string
	submitFn := func() error {
		transcript, err := c.client.Transcripts.SubmitFromURL(ctx, audioURL, params)
		if err != nil {
			if isClientError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if transcript.ID == nil || *transcript.ID == "" {
			return backoff.Permanent(errors.New("assemblyai returned no transcript id"))
		}
		jobID = *transcript.ID
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = c.maxElapsed
	bo.MaxInterval = 10 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("failed to submit to assemblyai: %w", err)
	}
	return jobID, nil
}

// Check fetches the job once. A returned error is transient; terminal
// upstream outcomes are reported through the result state.
func (c *AssemblyAIClient) Check(ctx context.Context, jobID string) (*TranscriptionResult, error) {
	transcript, err := c.client.Transcripts.Get(ctx, jobID)
	if err != nil {
		var apiErr aai.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return &TranscriptionResult{State: TranscriptionNoResult, Error: "transcript not found upstream"}, nil
		}
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	return toResult(transcript), nil
}

func toResult(t aai.Transcript) *TranscriptionResult {
	switch t.Status {
	case aai.TranscriptStatusError:
		msg := "transcription failed"
		if t.Error != nil && *t.Error != "" {
			msg = *t.Error
		}
		return &TranscriptionResult{State: TranscriptionFailed, Error: msg}
	case aai.TranscriptStatusCompleted:
	default:
		return &TranscriptionResult{State: TranscriptionPending}
	}

	utterances := make([]Utterance, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		if u.Text == nil || strings.TrimSpace(*u.Text) == "" {
			continue
		}
		utt := Utterance{Text: strings.TrimSpace(*u.Text)}
		if u.Speaker != nil {
			utt.Speaker = SpeakerNumber(*u.Speaker)
		}
		if u.Start != nil {
			utt.Offset = float64(*u.Start) / 1000.0 // ms to seconds
		}
		utterances = append(utterances, utt)
	}
	if len(utterances) == 0 {
		return &TranscriptionResult{State: TranscriptionNoResult, Error: "transcript has no utterances"}
	}
	return &TranscriptionResult{State: TranscriptionCompleted, Utterances: utterances}
}

// SpeakerNumber converts an AssemblyAI speaker label ("A", "B", ... "AA")
// or a numeric label into a 1-based speaker number. Unknown labels map to 0.
func SpeakerNumber(label string) int {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0
	}
	if n, err := strconv.Atoi(label); err == nil {
		return n
	}
	n := 0
	for _, r := range strings.ToUpper(label) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A') + 1
	}
	return n
}

func isClientError(err error) bool {
	var apiErr aai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests
	}
	return false
}
