package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

type fakeTrack struct {
	kind    string
	stopped bool
}

func (t *fakeTrack) Kind() string { return t.kind }
func (t *fakeTrack) Stop()        { t.stopped = true }

type fakeStream struct {
	tracks []*fakeTrack
}

func (s *fakeStream) Tracks() []Track {
	var live []Track
	for _, t := range s.tracks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	return live
}

type fakeDevice struct {
	deny    bool
	streams []*fakeStream
}

func (d *fakeDevice) Acquire(ctx context.Context, kind Kind) (Stream, error) {
	if d.deny {
		return nil, errors.New("NotAllowedError")
	}
	tracks := []*fakeTrack{{kind: "audio"}}
	if kind == KindVideo {
		tracks = append(tracks, &fakeTrack{kind: "video"})
	}
	stream := &fakeStream{tracks: tracks}
	d.streams = append(d.streams, stream)
	return stream, nil
}

func (d *fakeDevice) liveTracks() int {
	n := 0
	for _, s := range d.streams {
		n += len(s.Tracks())
	}
	return n
}

func collector() (*[]domain.MediaAttachment, func(domain.MediaAttachment)) {
	var emitted []domain.MediaAttachment
	return &emitted, func(a domain.MediaAttachment) { emitted = append(emitted, a) }
}

func TestAcquireDeniedLeavesStateUnchanged(t *testing.T) {
	emitted, emit := collector()
	rec := NewRecorder(&fakeDevice{deny: true}, emit)

	err := rec.Acquire(context.Background(), KindAudio)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, 0, rec.ActiveTracks())

	// recording still a no-op afterwards
	rec.StartRecording("")
	rec.Push([]byte{1, 2, 3})
	assert.ErrorIs(t, rec.StopRecording(), domain.ErrNotRecording)
	assert.Empty(t, *emitted)
}

func TestStartRecordingWithoutStreamIsNoOp(t *testing.T) {
	emitted, emit := collector()
	rec := NewRecorder(&fakeDevice{}, emit)

	rec.StartRecording("")
	rec.Push([]byte("data"))
	assert.ErrorIs(t, rec.StopRecording(), domain.ErrNotRecording)
	assert.Empty(t, *emitted)
}

func TestRecordStopEmitsAttachmentAndReleases(t *testing.T) {
	device := &fakeDevice{}
	emitted, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindAudio))
	assert.Equal(t, 1, rec.ActiveTracks())

	rec.StartRecording("")
	rec.Push([]byte("chunk-one-"))
	rec.Push([]byte("chunk-two"))
	require.NoError(t, rec.StopRecording())

	require.Len(t, *emitted, 1)
	att := (*emitted)[0]
	assert.Equal(t, domain.AttachmentAudio, att.Type)
	assert.Equal(t, "audio/webm", att.MimeType)
	assert.NotEmpty(t, att.ID)

	decoded, err := base64.StdEncoding.DecodeString(att.Data)
	require.NoError(t, err)
	assert.Equal(t, "chunk-one-chunk-two", string(decoded))

	// invariant: nothing left open
	assert.Equal(t, 0, rec.ActiveTracks())
	assert.Equal(t, 0, device.liveTracks())
}

func TestVideoKindUsesVideoMime(t *testing.T) {
	device := &fakeDevice{}
	emitted, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindVideo))
	assert.Equal(t, 2, rec.ActiveTracks())

	rec.StartRecording("")
	rec.Push([]byte("frames"))
	require.NoError(t, rec.StopRecording())

	require.Len(t, *emitted, 1)
	assert.Equal(t, domain.AttachmentVideo, (*emitted)[0].Type)
	assert.Equal(t, "video/webm", (*emitted)[0].MimeType)
	assert.Equal(t, 0, device.liveTracks())
}

func TestMimeOverrideFallback(t *testing.T) {
	device := &fakeDevice{}
	emitted, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindAudio))
	rec.StartRecording("audio/mp4")
	rec.Push([]byte("x"))
	require.NoError(t, rec.StopRecording())

	assert.Equal(t, "audio/mp4", (*emitted)[0].MimeType)
}

func TestStartRecordingClearsPriorBuffer(t *testing.T) {
	device := &fakeDevice{}
	emitted, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindAudio))
	rec.StartRecording("")
	rec.Push([]byte("stale"))

	rec.StartRecording("")
	rec.Push([]byte("fresh"))
	require.NoError(t, rec.StopRecording())

	decoded, _ := base64.StdEncoding.DecodeString((*emitted)[0].Data)
	assert.Equal(t, "fresh", string(decoded))
}

func TestCancelReleasesWithoutEmitting(t *testing.T) {
	device := &fakeDevice{}
	emitted, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindVideo))
	rec.StartRecording("")
	rec.Push([]byte("half-recorded"))
	rec.Cancel()

	assert.Empty(t, *emitted)
	assert.Equal(t, 0, rec.ActiveTracks())
	assert.Equal(t, 0, device.liveTracks())

	// cancel from idle is also safe
	rec.Cancel()
}

func TestStopThenCancelLeavesZeroTracks(t *testing.T) {
	device := &fakeDevice{}
	_, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindAudio))
	rec.StartRecording("")
	rec.Push([]byte("a"))
	require.NoError(t, rec.StopRecording())
	rec.Cancel()

	assert.Equal(t, 0, device.liveTracks())
}

func TestReacquireReleasesPriorStream(t *testing.T) {
	device := &fakeDevice{}
	_, emit := collector()
	rec := NewRecorder(device, emit)

	require.NoError(t, rec.Acquire(context.Background(), KindAudio))
	require.NoError(t, rec.Acquire(context.Background(), KindVideo))

	// only the second stream's tracks are live
	assert.Equal(t, 2, device.liveTracks())
	rec.Cancel()
	assert.Equal(t, 0, device.liveTracks())
}

func TestSelectFileEmitsImageImmediately(t *testing.T) {
	emitted, emit := collector()
	rec := NewRecorder(&fakeDevice{}, emit)

	att := rec.SelectFile("image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	require.Len(t, *emitted, 1)
	assert.Equal(t, domain.AttachmentImage, att.Type)
	assert.Equal(t, "image/png", att.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47}), att.Data)
	assert.Contains(t, att.PreviewURL, "data:image/png;base64,")

	// no streaming state involved
	assert.Equal(t, 0, rec.ActiveTracks())
}

func TestSelectFileUnknownMimeDefaults(t *testing.T) {
	_, emit := collector()
	rec := NewRecorder(&fakeDevice{}, emit)

	att := rec.SelectFile("application/octet-stream", []byte("x"))
	assert.Equal(t, "image/jpeg", att.MimeType)
}
