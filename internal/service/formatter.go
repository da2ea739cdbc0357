package service

import (
	"fmt"
	"strings"

	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

// Wire types for the generateContent request body.

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// FormatHistory maps a conversation to provider content turns. The mapping
// is pure and order-preserving: turn i of the output corresponds to
// message i of the input, so appending a message extends the previous
// result without rewriting prior turns.
//
// User turns emit one inline-data part per attachment followed by exactly
// one text part. A set pain rating is appended verbatim to the text; a
// turn with no text falls back to the default prompt so the model never
// receives an empty user turn. Model turns emit the stored reply as the
// sole part.
func FormatHistory(history []domain.ChatMessage) []Content {
	contents := make([]Content, 0, len(history))
	for _, msg := range history {
		if msg.Role == domain.RoleModel {
			contents = append(contents, Content{
				Role:  "model",
				Parts: []Part{{Text: msg.Text}},
			})
			continue
		}

		parts := make([]Part, 0, len(msg.Attachments)+1)
		for _, att := range msg.Attachments {
			parts = append(parts, Part{
				InlineData: &InlineData{
					MimeType: att.MimeType,
					Data:     att.Data,
				},
			})
		}
		parts = append(parts, Part{Text: userText(msg)})

		contents = append(contents, Content{Role: "user", Parts: parts})
	}
	return contents
}

func userText(msg domain.ChatMessage) string {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = config.DefaultAnalysisPrompt
	}
	if msg.PainLevel != nil {
		text += "\n\n" + fmt.Sprintf(config.PainNoteFormat, *msg.PainLevel)
	}
	return text
}
