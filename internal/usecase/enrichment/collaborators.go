package enrichment

import (
	"context"

	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

// ChatClient is the language-model call shared by the scorer, rewriter and
// summarizer. *ai.GroqClient satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, system, user string, jsonMode bool, maxTokens int) (*ai.ChatResult, error)
}

// Transcriber submits audio to and polls the upstream transcription service.
// *ai.AssemblyAIClient satisfies it.
type Transcriber interface {
	Submit(ctx context.Context, audioURL string) (string, error)
	Check(ctx context.Context, jobID string) (*ai.TranscriptionResult, error)
}

// ObjectStore holds meeting audio and archived transcripts.
// *storage.MinIOClient satisfies it.
type ObjectStore interface {
	Exists(ctx context.Context, objectName string) (bool, error)
	PresignAudio(ctx context.Context, objectName string) (string, error)
	UploadText(ctx context.Context, objectName string, content string) error
}
