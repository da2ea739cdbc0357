package domain

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentAudio AttachmentType = "audio"
)

// MediaAttachment is a finished piece of captured or selected media. Data
// holds the base64-encoded payload; PreviewURL is a transient display
// handle for the client and is never sent to the analysis provider.
type MediaAttachment struct {
	ID         string         `json:"id"`
	Type       AttachmentType `json:"type"`
	MimeType   string         `json:"mimeType"`
	Data       string         `json:"data"`
	PreviewURL string         `json:"previewUrl,omitempty"`
}

// ChatMessage is one turn of the conversation. PainLevel is nil unless the
// user picked a rating (0–10); only the first user turn of a session
// carries attachments or a pain level in the intended flow.
type ChatMessage struct {
	ID          string            `json:"id"`
	Role        Role              `json:"role"`
	Text        string            `json:"text,omitempty"`
	Attachments []MediaAttachment `json:"attachments,omitempty"`
	PainLevel   *int              `json:"painLevel,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// HasContent reports whether the message carries anything worth sending.
func (m ChatMessage) HasContent() bool {
	return m.Text != "" || len(m.Attachments) > 0
}

// GroundingChunk is a citation returned alongside an analysis reply.
type GroundingChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Usage is the provider-reported token consumption for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// AnalysisResult is the provider's reply for one submitted turn.
type AnalysisResult struct {
	Text            string
	GroundingChunks []GroundingChunk
	Usage           Usage
}
