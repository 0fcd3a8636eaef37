package presenter

import (
	"time"

	"github.com/johnquangdev/meeting-enrichment/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/usecase/enrichment"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	meta := m.Metadata.Data()
	return &meeting.MeetingResponse{
		ID:             m.ID.String(),
		UserID:         m.UserID,
		Title:          m.Title,
		AudioObjectKey: m.AudioObjectKey,
		ExternalJobID:  m.ExternalJobID,
		Status:         string(m.Status),
		ErrorMessage:   m.ErrorMessage,
		Metadata: meeting.MetadataResponse{
			PromptTokens:     meta.PromptTokens,
			CompletionTokens: meta.CompletionTokens,
			APICalls:         meta.APICalls,
			SpeakerCount:     meta.SpeakerCount,
			StageDurationsMs: meta.StageDurationsMs,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToMeetingListResponse converts a list of Meeting entities
func ToMeetingListResponse(meetings []*entities.Meeting) []*meeting.MeetingResponse {
	out := make([]*meeting.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, ToMeetingResponse(m))
	}
	return out
}

// ToProgressResponse converts stage progress to ProgressResponse DTO
func ToProgressResponse(p *enrichment.MeetingProgress) *meeting.ProgressResponse {
	if p == nil {
		return nil
	}
	return &meeting.ProgressResponse{
		Meeting:              ToMeetingResponse(p.Meeting),
		EnrichmentSegments:   p.Enrichment,
		MergedSegments:       p.Merged,
		FinalSegments:        p.Final,
		ConversationSegments: p.Conversation,
		NextStage:            p.NextStage,
		NextStageName:        p.NextStageName,
	}
}

// ToConversationResponse converts the conversation rows of a meeting
func ToConversationResponse(meetingID string, rows []*entities.ConversationSegment) *meeting.ConversationResponse {
	segments := make([]*meeting.ConversationSegmentResponse, 0, len(rows))
	for _, r := range rows {
		segments = append(segments, &meeting.ConversationSegmentResponse{
			Sequence:      r.Sequence,
			SpeakerID:     r.SpeakerID,
			UserID:        r.UserID,
			Text:          r.Text,
			OffsetSeconds: r.OffsetSeconds,
			IsSummary:     r.IsSummary(),
		})
	}
	return &meeting.ConversationResponse{MeetingID: meetingID, Segments: segments}
}

// ToPollResponse converts a pipeline run report
func ToPollResponse(r *enrichment.RunReport, finishedAt time.Time) *meeting.PollResponse {
	if r == nil {
		return nil
	}
	resp := &meeting.PollResponse{
		Loaded:      r.Loaded,
		Advanced:    r.Advanced,
		Pending:     r.Pending,
		Terminated:  r.Terminated,
		Failed:      r.Failed,
		Rejected:    r.Rejected,
		TotalTokens: r.Usage.TotalTokens,
		APICalls:    r.Usage.Calls,
		DurationMs:  r.Duration.Milliseconds(),
	}
	if !finishedAt.IsZero() {
		resp.FinishedAt = finishedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
