package capture

import "context"

// Kind selects what the device stream carries: microphone only, or
// camera plus microphone.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Track is one live device track. Stop turns the underlying device off.
type Track interface {
	Kind() string
	Stop()
}

// Stream is an acquired device stream. The recorder owns it exclusively
// for its lifetime and must stop every track on every exit path.
type Stream interface {
	Tracks() []Track
}

// Device acquires streams. Acquisition is the only operation with side
// effects beyond callbacks (it turns on the camera/microphone indicator),
// so denial must leave nothing running.
type Device interface {
	Acquire(ctx context.Context, kind Kind) (Stream, error)
}

func defaultMimeType(kind Kind) string {
	if kind == KindVideo {
		return "video/webm"
	}
	return "audio/webm"
}
