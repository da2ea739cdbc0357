package domain

import (
	"time"
)

// TriageSession is one page session's conversation. Messages is
// append-only: entries are never rewritten or reordered after creation,
// and the whole slice is discarded on reset.
type TriageSession struct {
	ID              string        `json:"id"`
	Status          SessionStatus `json:"status"`
	Messages        []ChatMessage `json:"messages"`
	CreatedAt       time.Time     `json:"createdAt"`
	LastInteraction time.Time     `json:"lastInteraction"`
}

// IsFollowUp reports whether the next user turn continues an existing
// conversation. Follow-ups carry text only; attachments and the pain
// rating belong to the first turn.
func (s *TriageSession) IsFollowUp() bool {
	return len(s.Messages) > 0
}

// LocationHint is a best-effort client-resolved coordinate pair passed
// through to the analysis provider. Resolution failures on the client are
// silently ignored and the hint simply stays nil.
type LocationHint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
