package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingStatus is the enrichment pipeline state of a meeting
type MeetingStatus string

const (
	MeetingStatusProcessing     MeetingStatus = "processing"  // Waiting for the upstream transcription job
	MeetingStatusTranscribed    MeetingStatus = "transcribed" // Raw transcript stored, ready for stage 1
	MeetingStatusStep1Completed MeetingStatus = "step1_completed"
	MeetingStatusStep2Completed MeetingStatus = "step2_completed"
	MeetingStatusStep3Completed MeetingStatus = "step3_completed"
	MeetingStatusStep4Completed MeetingStatus = "step4_completed"
	MeetingStatusStep5Completed MeetingStatus = "step5_completed"
	MeetingStatusStep6Completed MeetingStatus = "step6_completed"
	MeetingStatusStep7Completed MeetingStatus = "step7_completed"
	MeetingStatusStep8Completed MeetingStatus = "step8_completed" // Conversation segments materialized
	MeetingStatusFailed         MeetingStatus = "failed"          // Transcription job failed or was canceled
	MeetingStatusNoResult       MeetingStatus = "noresult"        // Transcription job produced no result

	// MeetingStatusAllStepCompleted is a legacy spelling of step8_completed.
	MeetingStatusAllStepCompleted MeetingStatus = "AllStepCompleted"
)

// transitions is the only place the forward order of the pipeline is defined.
var transitions = map[MeetingStatus]MeetingStatus{
	MeetingStatusProcessing:     MeetingStatusTranscribed,
	MeetingStatusTranscribed:    MeetingStatusStep1Completed,
	MeetingStatusStep1Completed: MeetingStatusStep2Completed,
	MeetingStatusStep2Completed: MeetingStatusStep3Completed,
	MeetingStatusStep3Completed: MeetingStatusStep4Completed,
	MeetingStatusStep4Completed: MeetingStatusStep5Completed,
	MeetingStatusStep5Completed: MeetingStatusStep6Completed,
	MeetingStatusStep6Completed: MeetingStatusStep7Completed,
	MeetingStatusStep7Completed: MeetingStatusStep8Completed,
}

// stageForStatus maps a status to the stage that consumes it.
var stageForStatus = map[MeetingStatus]int{
	MeetingStatusTranscribed:    1,
	MeetingStatusStep1Completed: 2,
	MeetingStatusStep2Completed: 3,
	MeetingStatusStep3Completed: 4,
	MeetingStatusStep4Completed: 5,
	MeetingStatusStep5Completed: 6,
	MeetingStatusStep6Completed: 7,
	MeetingStatusStep7Completed: 8,
}

// ParseMeetingStatus validates a stored status value. The legacy
// AllStepCompleted spelling is folded into step8_completed.
func ParseMeetingStatus(raw string) (MeetingStatus, error) {
	s := MeetingStatus(raw)
	switch s {
	case MeetingStatusAllStepCompleted:
		return MeetingStatusStep8Completed, nil
	case MeetingStatusFailed, MeetingStatusNoResult, MeetingStatusStep8Completed:
		return s, nil
	}
	if _, ok := transitions[s]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// IsTerminal reports whether no further transition is possible
func (s MeetingStatus) IsTerminal() bool {
	switch s {
	case MeetingStatusStep8Completed, MeetingStatusAllStepCompleted, MeetingStatusFailed, MeetingStatusNoResult:
		return true
	}
	return false
}

// Next returns the status that follows s on success
func (s MeetingStatus) Next() (MeetingStatus, error) {
	if s.IsTerminal() {
		return "", fmt.Errorf("%w: %s", ErrTerminalStatus, s)
	}
	next, ok := transitions[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	return next, nil
}

// Stage returns the stage number (1-8) that consumes s, or 0 when s is not
// handled by a stage function.
func (s MeetingStatus) Stage() int {
	return stageForStatus[s]
}

// CanTransition reports whether from -> to is allowed by the state machine
func CanTransition(from, to MeetingStatus) bool {
	if from == MeetingStatusProcessing && (to == MeetingStatusFailed || to == MeetingStatusNoResult) {
		return true
	}
	next, ok := transitions[from]
	return ok && next == to
}

// TerminalStatuses lists every stored value that ends the pipeline
func TerminalStatuses() []MeetingStatus {
	return []MeetingStatus{
		MeetingStatusStep8Completed,
		MeetingStatusAllStepCompleted,
		MeetingStatusFailed,
		MeetingStatusNoResult,
	}
}

// PendingStatuses lists every stored value the pipeline still has work for
func PendingStatuses() []MeetingStatus {
	return []MeetingStatus{
		MeetingStatusProcessing,
		MeetingStatusTranscribed,
		MeetingStatusStep1Completed,
		MeetingStatusStep2Completed,
		MeetingStatusStep3Completed,
		MeetingStatusStep4Completed,
		MeetingStatusStep5Completed,
		MeetingStatusStep6Completed,
		MeetingStatusStep7Completed,
	}
}

// KnownStatuses lists every stored value the state machine recognizes
func KnownStatuses() []MeetingStatus {
	return append(PendingStatuses(), TerminalStatuses()...)
}

// MeetingMetadata stores pipeline bookkeeping for a meeting
type MeetingMetadata struct {
	PromptTokens     int              `json:"prompt_tokens,omitempty"`
	CompletionTokens int              `json:"completion_tokens,omitempty"`
	APICalls         int              `json:"api_calls,omitempty"`
	SpeakerCount     int              `json:"speaker_count,omitempty"`
	StageDurationsMs map[string]int64 `json:"stage_durations_ms,omitempty"`
}

// Meeting is a recorded meeting moving through the enrichment pipeline
type Meeting struct {
	ID             uuid.UUID                           `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uint                                `json:"user_id" gorm:"not null;index"`
	Title          string                              `json:"title" gorm:"type:varchar(255)"`
	AudioObjectKey string                              `json:"audio_object_key" gorm:"type:text;not null"`
	ExternalJobID  *string                             `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"` // AssemblyAI transcript ID
	Transcript     string                              `json:"transcript,omitempty" gorm:"type:text"`
	Status         MeetingStatus                       `json:"status" gorm:"type:varchar(50);not null;index;default:'processing'"`
	ErrorMessage   *string                             `json:"error_message,omitempty" gorm:"type:text"`
	Metadata       datatypes.JSONType[MeetingMetadata] `json:"metadata"`
	CreatedAt      time.Time                           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a meeting waiting for transcription
func NewMeeting(userID uint, title, audioObjectKey string) *Meeting {
	return &Meeting{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          title,
		AudioObjectKey: audioObjectKey,
		Status:         MeetingStatusProcessing,
		Metadata:       datatypes.NewJSONType(MeetingMetadata{}),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// JobID returns the upstream transcription job id, or "" when none was stored
func (m *Meeting) JobID() string {
	if m.ExternalJobID == nil {
		return ""
	}
	return *m.ExternalJobID
}
