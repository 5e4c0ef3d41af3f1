package ports

import (
	"context"
	"time"
)

// Chat message roles. The OpenAI set; providers reject anything else.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContentPart is one element of a multi-part message: plain text or an
// image reference (https URL or base64 data URL).
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Message is a single role-tagged chat turn. Parts is used instead of
// Text when the message carries image attachments.
type Message struct {
	Role  string
	Text  string
	Parts []ContentPart
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

type ChatResponse struct {
	Content string
	// Reasoning carries choices[0].message.reasoning_content when the
	// provider exposes it (DeepSeek-R1 style models).
	Reasoning    string
	FinishReason string
	PromptTokens int
	OutputTokens int
}

// ChatCompleter issues chat-completion calls against one provider.
type ChatCompleter interface {
	// Complete performs a blocking completion call.
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// Stream performs a streaming call, invoking onDelta for every
	// content fragment until the stream finishes.
	Stream(ctx context.Context, req ChatRequest, onDelta func(delta string) error) error
}

// VideoTool wraps the ffmpeg/ffprobe operations the pipeline needs.
type VideoTool interface {
	RenderClip(ctx context.Context, inVideo string, start, end time.Duration, outVideo string) error
	ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error)
}
