package domain

import "errors"

var (
	ErrAnalysisUnavailable = errors.New("could not reach the service")
	ErrSessionNotFound     = errors.New("session not found")
	ErrIllegalTransition   = errors.New("illegal session transition")
	ErrEmptySubmission     = errors.New("empty submission")
	ErrAnalysisInProgress  = errors.New("analysis already in progress")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNoActiveStream      = errors.New("no active stream")
	ErrNotRecording        = errors.New("not recording")
	ErrInvalidPainLevel    = errors.New("pain level must be between 0 and 10")
	ErrAttachmentTooLarge  = errors.New("attachment too large")
	ErrMessageLimit        = errors.New("message limit exceeded")
)
