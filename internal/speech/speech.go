// Package speech tracks per-session speech playback with single-utterance
// semantics: starting a new utterance cancels the previous one, and a
// session reset cancels outright. The actual synthesis backend sits behind
// the Synthesizer interface; the default deployment delegates playback to
// the browser and only needs the lifecycle tracking.
package speech

import (
	"context"
	"log/slog"
	"sync"
)

// Synthesizer plays one utterance until it finishes or its context is
// cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Noop is the browser-delegated backend: playback happens client-side, the
// server only tracks utterance lifetimes.
type Noop struct{}

func (Noop) Speak(ctx context.Context, text string) error {
	<-ctx.Done()
	return nil
}

type utterance struct {
	cancel context.CancelFunc
}

type Controller struct {
	mu     sync.Mutex
	synth  Synthesizer
	active map[string]*utterance
}

func NewController(synth Synthesizer) *Controller {
	return &Controller{
		synth:  synth,
		active: make(map[string]*utterance),
	}
}

// Speak starts an utterance for the session, cancelling any prior one
// first.
func (c *Controller) Speak(sessionID, text string) {
	ctx, cancel := context.WithCancel(context.Background())
	u := &utterance{cancel: cancel}

	c.mu.Lock()
	if prior, ok := c.active[sessionID]; ok {
		prior.cancel()
	}
	c.active[sessionID] = u
	c.mu.Unlock()

	go func() {
		defer cancel()
		if err := c.synth.Speak(ctx, text); err != nil && ctx.Err() == nil {
			slog.Warn("speech playback failed", "session_id", sessionID, "error", err)
		}
		c.mu.Lock()
		if c.active[sessionID] == u {
			delete(c.active, sessionID)
		}
		c.mu.Unlock()
	}()
}

// Cancel stops any in-flight utterance for the session.
func (c *Controller) Cancel(sessionID string) {
	c.mu.Lock()
	u, ok := c.active[sessionID]
	if ok {
		delete(c.active, sessionID)
	}
	c.mu.Unlock()
	if ok {
		u.cancel()
	}
}

// Speaking reports whether the session has an utterance in flight.
func (c *Controller) Speaking(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[sessionID]
	return ok
}
