package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type KeyContext string

var (
	keyMeetingID    KeyContext = "meeting_id"
	keyStage        KeyContext = "stage"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyStartTime    KeyContext = "stage_start_time"
	keyMaxRetries   KeyContext = "max_retries"
	keyBaseDelay    KeyContext = "base_delay"
)

const maxBackoff = 60 * time.Second

// ErrPanic marks an error recovered from a panicking stage
var ErrPanic = errors.New("panic recovered")

// StageMetadata holds metadata for one stage execution of one meeting
type StageMetadata struct {
	MeetingID    uuid.UUID
	Stage        string
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// StageBegin derives a stage context with metadata and a timeout
func StageBegin(parentCtx context.Context, meetingID uuid.UUID, stage string, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyStage, stage)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// StageRun executes fn with panic recovery. Retryable errors are retried up
// to the max retries stored in ctx (default 3) with exponential backoff;
// other errors and panics are returned immediately.
func StageRun(ctx context.Context, fn func(context.Context) error) error {
	var (
		last       error
		maxRetries = GetMaxRetries(ctx)
		attempt    = GetRetryAttempt(ctx)
	)

	op := func() error {
		last = runAttempt(SetRetryAttempt(ctx, attempt), fn)
		attempt++
		if last == nil {
			return nil
		}
		if errors.Is(last, ErrPanic) || !IsRetryableError(last) {
			return backoff.Permanent(last)
		}
		return last
	}

	retries := maxRetries - attempt - 1
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(GetBaseDelay(ctx)), uint64(retries)), ctx)

	err := backoff.Retry(op, b)
	switch {
	case err == nil:
		return nil
	case last == nil || errors.Is(last, ErrPanic) || !IsRetryableError(last):
		return err
	case ctx.Err() != nil:
		return fmt.Errorf("context cancelled during retry: %w", last)
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, last)
}

func runAttempt(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before stage execution: %w", ctx.Err())
	}
	return fn(ctx)
}

// newBackOff doubles baseDelay per retry, capped at maxBackoff
func newBackOff(baseDelay time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	return b
}

// GetMeetingID extracts the meeting ID from context
func GetMeetingID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyMeetingID).(uuid.UUID)
	return id, ok
}

// GetStage extracts the stage name from context
func GetStage(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(keyStage).(string)
	return stage, ok
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok || maxRetries <= 0 {
		return 3 // default
	}
	return maxRetries
}

// SetMaxRetries updates max retries in context
func SetMaxRetries(ctx context.Context, maxRetries int) context.Context {
	return context.WithValue(ctx, keyMaxRetries, maxRetries)
}

// GetBaseDelay extracts the retry base delay from context
func GetBaseDelay(ctx context.Context) time.Duration {
	d, ok := ctx.Value(keyBaseDelay).(time.Duration)
	if !ok || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// SetBaseDelay updates the retry base delay in context
func SetBaseDelay(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, keyBaseDelay, d)
}

// GetStartTime extracts stage start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// GetStageMetadata extracts all stage metadata from context
func GetStageMetadata(ctx context.Context) *StageMetadata {
	meetingID, _ := GetMeetingID(ctx)
	stage, _ := GetStage(ctx)
	startTime, _ := GetStartTime(ctx)

	return &StageMetadata{
		MeetingID:    meetingID,
		Stage:        stage,
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Database deadlock/lock errors
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") || // deadlock_detected
		strings.Contains(errStr, "database is locked") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}
