package meeting

// SubmitMeetingRequest represents the request to register a recorded meeting
type SubmitMeetingRequest struct {
	UserID         uint   `json:"user_id" validate:"required,min=1"`
	Title          string `json:"title" validate:"max=255"`
	AudioObjectKey string `json:"audio_object_key" validate:"required,max=1024,object_key"`
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Status   string `query:"status" validate:"required,meeting_status"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}
