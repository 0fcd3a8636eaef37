package meeting

import "time"

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID             string           `json:"id"`
	UserID         uint             `json:"user_id"`
	Title          string           `json:"title"`
	AudioObjectKey string           `json:"audio_object_key"`
	ExternalJobID  *string          `json:"external_job_id,omitempty"`
	Status         string           `json:"status"`
	ErrorMessage   *string          `json:"error_message,omitempty"`
	Metadata       MetadataResponse `json:"metadata"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// MetadataResponse carries the pipeline bookkeeping of a meeting
type MetadataResponse struct {
	PromptTokens     int              `json:"prompt_tokens"`
	CompletionTokens int              `json:"completion_tokens"`
	APICalls         int              `json:"api_calls"`
	SpeakerCount     int              `json:"speaker_count"`
	StageDurationsMs map[string]int64 `json:"stage_durations_ms,omitempty"`
}

// ProgressResponse is a meeting with the row counts of each stage table
type ProgressResponse struct {
	Meeting              *MeetingResponse `json:"meeting"`
	EnrichmentSegments   int64            `json:"enrichment_segments"`
	MergedSegments       int64            `json:"merged_segments"`
	FinalSegments        int64            `json:"final_segments"`
	ConversationSegments int64            `json:"conversation_segments"`
	NextStage            int              `json:"next_stage,omitempty"`
	NextStageName        string           `json:"next_stage_name,omitempty"`
}

// ConversationSegmentResponse is one row of the meeting timeline
type ConversationSegmentResponse struct {
	Sequence      int     `json:"sequence"`
	SpeakerID     uint    `json:"speaker_id"`
	UserID        uint    `json:"user_id"`
	Text          string  `json:"text"`
	OffsetSeconds float64 `json:"offset_seconds"`
	IsSummary     bool    `json:"is_summary"`
}

// ConversationResponse is the materialized timeline of a meeting
type ConversationResponse struct {
	MeetingID string                         `json:"meeting_id"`
	Segments  []*ConversationSegmentResponse `json:"segments"`
}

// PollResponse reports the outcome of a manual pipeline poll
type PollResponse struct {
	Loaded      int    `json:"loaded"`
	Advanced    int    `json:"advanced"`
	Pending     int    `json:"pending"`
	Terminated  int    `json:"terminated"`
	Failed      int    `json:"failed"`
	Rejected    int    `json:"rejected"`
	TotalTokens int    `json:"total_tokens"`
	APICalls    int    `json:"api_calls"`
	DurationMs  int64  `json:"duration_ms"`
	FinishedAt  string `json:"finished_at,omitempty"`
}
