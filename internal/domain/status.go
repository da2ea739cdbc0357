package domain

import "fmt"

// SessionStatus is the session's linear state machine. Transitions go
// through Transition so an illegal move is an error at the call site
// rather than a UI convention.
type SessionStatus string

const (
	StatusIdle      SessionStatus = "IDLE"
	StatusAnalyzing SessionStatus = "ANALYZING"
	StatusResult    SessionStatus = "RESULT"
	StatusError     SessionStatus = "ERROR"
)

type SessionEvent string

const (
	EventSubmit  SessionEvent = "submit"
	EventSuccess SessionEvent = "success"
	EventFailure SessionEvent = "failure"
	EventReset   SessionEvent = "reset"
)

var transitions = map[SessionStatus]map[SessionEvent]SessionStatus{
	StatusIdle: {
		EventSubmit: StatusAnalyzing,
		EventReset:  StatusIdle,
	},
	StatusAnalyzing: {
		EventSuccess: StatusResult,
		EventFailure: StatusError,
		EventReset:   StatusIdle,
	},
	StatusResult: {
		EventSubmit: StatusAnalyzing,
		EventReset:  StatusIdle,
	},
	StatusError: {
		EventSubmit: StatusAnalyzing,
		EventReset:  StatusIdle,
	},
}

// Transition returns the status after applying event, or
// ErrIllegalTransition if the machine does not allow it.
func (s SessionStatus) Transition(event SessionEvent) (SessionStatus, error) {
	next, ok := transitions[s][event]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, event, s)
	}
	return next, nil
}

// CanSubmit reports whether a new user turn may be accepted.
func (s SessionStatus) CanSubmit() bool {
	_, ok := transitions[s][EventSubmit]
	return ok
}
