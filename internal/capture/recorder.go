package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

type recorderState int

const (
	stateIdle recorderState = iota
	stateAcquired
	stateRecording
)

// Recorder drives the capture lifecycle: acquire a device stream, buffer
// chunks while recording, finalize into one base64-encoded attachment
// emitted via callback, and release the stream. The one hard invariant is
// that no stream is ever left open once the recorder is not capturing —
// stop, cancel, and teardown all release on every path.
type Recorder struct {
	mu     sync.Mutex
	device Device
	emit   func(domain.MediaAttachment)

	state    recorderState
	kind     Kind
	mimeType string
	stream   Stream
	chunks   bytes.Buffer
}

func NewRecorder(device Device, emit func(domain.MediaAttachment)) *Recorder {
	return &Recorder{device: device, emit: emit}
}

// Acquire requests device access for the given kind. Denial is returned as
// a permission error and leaves the recorder unchanged.
func (r *Recorder) Acquire(ctx context.Context, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		releaseStream(r.stream)
	}

	stream, err := r.device.Acquire(ctx, kind)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	}

	r.stream = stream
	r.kind = kind
	r.state = stateAcquired
	return nil
}

// StartRecording begins accumulating chunks. Any previously buffered data
// is discarded. Without an active stream this is a silent no-op. The mime
// override carries the client recorder's actual container type; empty
// falls back to the fixed webm type for the capture kind.
func (r *Recorder) StartRecording(mimeOverride string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return
	}

	r.chunks.Reset()
	r.mimeType = mimeOverride
	if r.mimeType == "" {
		r.mimeType = defaultMimeType(r.kind)
	}
	r.state = stateRecording
}

// Push appends one binary chunk. Chunks arriving outside a recording are
// dropped.
func (r *Recorder) Push(chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateRecording {
		return
	}
	r.chunks.Write(chunk)
}

// StopRecording finalizes the buffered chunks into a single attachment,
// emits it, then releases the stream and resets to idle.
func (r *Recorder) StopRecording() error {
	r.mu.Lock()

	if r.state != stateRecording {
		r.mu.Unlock()
		return domain.ErrNotRecording
	}

	data := base64.StdEncoding.EncodeToString(r.chunks.Bytes())
	mimeType := r.mimeType
	attType := domain.AttachmentAudio
	if r.kind == KindVideo {
		attType = domain.AttachmentVideo
	}

	releaseStream(r.stream)
	r.stream = nil
	r.chunks.Reset()
	r.state = stateIdle
	r.mu.Unlock()

	r.emit(domain.MediaAttachment{
		ID:         uuid.NewString(),
		Type:       attType,
		MimeType:   mimeType,
		Data:       data,
		PreviewURL: dataURL(mimeType, data),
	})
	return nil
}

// Cancel releases the stream and resets to idle without emitting anything.
// Safe from any state; also the teardown path.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		releaseStream(r.stream)
		r.stream = nil
	}
	r.chunks.Reset()
	r.state = stateIdle
}

// SelectFile emits an image attachment from a user-picked file directly,
// independent of any streaming state.
func (r *Recorder) SelectFile(mimeType string, data []byte) domain.MediaAttachment {
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	att := domain.MediaAttachment{
		ID:         uuid.NewString(),
		Type:       domain.AttachmentImage,
		MimeType:   mimeType,
		Data:       encoded,
		PreviewURL: dataURL(mimeType, encoded),
	}
	r.emit(att)
	return att
}

// ActiveTracks counts live device tracks; zero whenever the recorder is
// not capturing.
func (r *Recorder) ActiveTracks() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return 0
	}
	return len(r.stream.Tracks())
}

func releaseStream(s Stream) {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

func dataURL(mimeType, b64 string) string {
	return "data:" + mimeType + ";base64," + b64
}
