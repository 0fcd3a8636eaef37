package errors

// ErrorCode identifies an AppError independently of its HTTP status
type ErrorCode int32

const (
	ErrorCode_HTTP_OK           ErrorCode = 0
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1004
	ErrorCode_INVALID_SIGNATURE ErrorCode = 1005

	ErrorCode_MEETING_NOT_FOUND     ErrorCode = 2000
	ErrorCode_MEETING_INVALID_STATE ErrorCode = 2001

	ErrorCode_SUBMISSION_FAILED ErrorCode = 3000
	ErrorCode_POLL_IN_PROGRESS  ErrorCode = 3001
	ErrorCode_PROCESSING_FAILED ErrorCode = 3002

	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 4000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_INVALID_SIGNATURE:          "INVALID_SIGNATURE",
	ErrorCode_MEETING_NOT_FOUND:          "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_STATE:      "MEETING_INVALID_STATE",
	ErrorCode_SUBMISSION_FAILED:          "SUBMISSION_FAILED",
	ErrorCode_POLL_IN_PROGRESS:           "POLL_IN_PROGRESS",
	ErrorCode_PROCESSING_FAILED:          "PROCESSING_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
