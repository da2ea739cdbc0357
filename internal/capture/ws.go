package capture

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Control frames exchanged with the browser. Recorded media itself arrives
// as binary frames between "start" and "stop".
type clientMessage struct {
	Type     string `json:"type"` // acquire, denied, start, stop, cancel
	Kind     Kind   `json:"kind,omitempty"`
	Tracks   int    `json:"tracks,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type serverMessage struct {
	Type       string                  `json:"type"` // acquired, attachment, cancelled, release, error
	Message    string                  `json:"message,omitempty"`
	Attachment *domain.MediaAttachment `json:"attachment,omitempty"`
}

// wsConn serializes writes; track Stop callbacks and the read loop both
// send frames.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg serverMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Debug("capture ws write failed", "error", err)
	}
}

// remoteTrack mirrors one browser MediaStreamTrack. Stop tells the client
// to stop the real track, so releasing the server-side stream always turns
// the device indicator off.
type remoteTrack struct {
	kind string
	conn *wsConn
	once sync.Once
}

func (t *remoteTrack) Kind() string { return t.kind }

func (t *remoteTrack) Stop() {
	t.once.Do(func() {
		t.conn.send(serverMessage{Type: "release"})
	})
}

type remoteStream struct {
	tracks []Track
}

func (s *remoteStream) Tracks() []Track { return s.tracks }

// remoteDevice acquires by reflecting the stream the browser already
// holds: by the time the client sends "acquire", getUserMedia has
// succeeded on its side.
type remoteDevice struct {
	conn   *wsConn
	tracks int
}

func (d *remoteDevice) Acquire(ctx context.Context, kind Kind) (Stream, error) {
	n := d.tracks
	if n <= 0 {
		n = 1
		if kind == KindVideo {
			n = 2
		}
	}
	tracks := make([]Track, 0, n)
	for i := 0; i < n; i++ {
		trackKind := "audio"
		if kind == KindVideo && i == 0 {
			trackKind = "video"
		}
		tracks = append(tracks, &remoteTrack{kind: trackKind, conn: d.conn})
	}
	return &remoteStream{tracks: tracks}, nil
}

// ServeWS runs one capture session over a websocket. The connection owns a
// single recorder; closing the connection for any reason tears the
// recorder down.
func ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("capture ws upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	conn := &wsConn{conn: ws}
	device := &remoteDevice{conn: conn}
	recorder := NewRecorder(device, func(att domain.MediaAttachment) {
		conn.send(serverMessage{Type: "attachment", Attachment: &att})
	})
	defer recorder.Cancel()

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("capture ws read failed", "error", err)
			}
			return
		}

		if msgType == websocket.BinaryMessage {
			recorder.Push(data)
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.send(serverMessage{Type: "error", Message: "malformed message"})
			continue
		}

		switch msg.Type {
		case "acquire":
			device.tracks = msg.Tracks
			if err := recorder.Acquire(r.Context(), msg.Kind); err != nil {
				conn.send(serverMessage{Type: "error", Message: permissionMessage(err)})
				continue
			}
			conn.send(serverMessage{Type: "acquired"})
		case "denied":
			// Browser-level permission dismissal; nothing was acquired.
			conn.send(serverMessage{Type: "error", Message: domain.ErrPermissionDenied.Error()})
		case "start":
			recorder.StartRecording(msg.MimeType)
		case "stop":
			if err := recorder.StopRecording(); err != nil {
				conn.send(serverMessage{Type: "error", Message: err.Error()})
			}
		case "cancel":
			recorder.Cancel()
			conn.send(serverMessage{Type: "cancelled"})
		default:
			conn.send(serverMessage{Type: "error", Message: "unknown message type"})
		}
	}
}

func permissionMessage(err error) string {
	if errors.Is(err, domain.ErrPermissionDenied) {
		return domain.ErrPermissionDenied.Error()
	}
	return "could not access the device"
}
