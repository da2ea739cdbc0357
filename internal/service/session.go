package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

// Analyzer is the remote analysis endpoint.
type Analyzer interface {
	Analyze(ctx context.Context, history []domain.ChatMessage, hint *domain.LocationHint) (*domain.AnalysisResult, error)
}

// SpeechCanceller stops any in-flight speech playback for a session.
type SpeechCanceller interface {
	Speak(sessionID, text string)
	Cancel(sessionID string)
}

// Archiver records transcripts for operational review. Nil disables it.
type Archiver interface {
	ArchiveSession(ctx context.Context, session *domain.TriageSession) error
	ArchiveMessage(ctx context.Context, sessionID string, msg domain.ChatMessage, costUSD string) error
}

// FailureAlerter notifies operators of provider failures. Nil disables it.
type FailureAlerter interface {
	AnalysisFailure(sessionID string, err error)
}

// SessionService owns every live conversation. Sessions are in-memory for
// their lifetime; reset or eviction discards everything.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*domain.TriageSession

	analyzer  Analyzer
	speech    SpeechCanceller
	grounding *GroundingResolver
	archive   Archiver
	alerts    FailureAlerter
}

func NewSessionService(analyzer Analyzer, speech SpeechCanceller, grounding *GroundingResolver, archive Archiver, alerts FailureAlerter) *SessionService {
	return &SessionService{
		sessions:  make(map[string]*domain.TriageSession),
		analyzer:  analyzer,
		speech:    speech,
		grounding: grounding,
		archive:   archive,
		alerts:    alerts,
	}
}

func (s *SessionService) Create(ctx context.Context) *domain.TriageSession {
	now := time.Now()
	session := &domain.TriageSession{
		ID:              uuid.NewString(),
		Status:          domain.StatusIdle,
		Messages:        []domain.ChatMessage{},
		CreatedAt:       now,
		LastInteraction: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.ArchiveSession(ctx, session); err != nil {
			slog.Error("archive session", "error", err, "session_id", session.ID)
		}
	}

	return session
}

func (s *SessionService) Get(sessionID string) (*domain.TriageSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return snapshot(session), nil
}

// SubmitInput is one user turn. Attachments and PainLevel are honored on
// the first turn only; follow-ups carry text alone.
type SubmitInput struct {
	Text        string
	Attachments []domain.MediaAttachment
	PainLevel   *int
	Location    *domain.LocationHint
}

// Submit validates and appends the user turn, runs the analysis call, and
// appends the reply. The user message is committed before the remote call
// starts; on failure the session lands in ERROR with the history retained
// so the user may retry.
func (s *SessionService) Submit(ctx context.Context, sessionID string, in SubmitInput) (*domain.TriageSession, error) {
	userMsg, err := s.begin(sessionID, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	session := s.sessions[sessionID]
	history := append([]domain.ChatMessage(nil), session.Messages...)
	s.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	result, err := s.analyzer.Analyze(reqCtx, history, in.Location)
	if err != nil {
		s.fail(sessionID, err)
		session, _ := s.Get(sessionID)
		return session, err
	}

	if s.grounding != nil {
		result.GroundingChunks = s.grounding.ResolveTitles(ctx, result.GroundingChunks)
	}

	reply, accepted := s.succeed(sessionID, result)
	if !accepted {
		return s.Get(sessionID)
	}

	cost := EstimateCost(result.Usage.PromptTokens, result.Usage.CompletionTokens)
	slog.Info("analysis complete",
		"session_id", sessionID,
		"prompt_tokens", result.Usage.PromptTokens,
		"completion_tokens", result.Usage.CompletionTokens,
		"est_cost_usd", cost.String(),
	)

	if s.archive != nil {
		if err := s.archive.ArchiveMessage(ctx, sessionID, userMsg, ""); err != nil {
			slog.Error("archive user message", "error", err, "session_id", sessionID)
		}
		if err := s.archive.ArchiveMessage(ctx, sessionID, reply, cost.String()); err != nil {
			slog.Error("archive reply", "error", err, "session_id", sessionID)
		}
	}

	if s.speech != nil {
		s.speech.Speak(sessionID, reply.Text)
	}

	return s.Get(sessionID)
}

// begin validates the turn and commits the user message under the session
// lock. Validation failures are no-ops: nothing is appended, no status
// changes.
func (s *SessionService) begin(sessionID string, in SubmitInput) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.ChatMessage{}, domain.ErrSessionNotFound
	}

	text := strings.TrimSpace(in.Text)
	followUp := session.IsFollowUp()
	if followUp && text == "" {
		return domain.ChatMessage{}, domain.ErrEmptySubmission
	}
	if !followUp && text == "" && len(in.Attachments) == 0 {
		return domain.ChatMessage{}, domain.ErrEmptySubmission
	}

	attachments := in.Attachments
	painLevel := in.PainLevel
	if followUp {
		// First-turn-only context: intentional product behavior, the
		// prior attachments and rating are already in the history.
		attachments = nil
		painLevel = nil
	}

	if painLevel != nil && (*painLevel < config.MinPainLevel || *painLevel > config.MaxPainLevel) {
		return domain.ChatMessage{}, domain.ErrInvalidPainLevel
	}
	if len(attachments) > config.MaxAttachmentsPerMsg {
		return domain.ChatMessage{}, domain.ErrAttachmentTooLarge
	}
	for _, att := range attachments {
		if base64.StdEncoding.DecodedLen(len(att.Data)) > config.MaxAttachmentBytes {
			return domain.ChatMessage{}, domain.ErrAttachmentTooLarge
		}
	}
	if len(session.Messages) >= config.MaxMessagesPerSession {
		return domain.ChatMessage{}, domain.ErrMessageLimit
	}

	if session.Status == domain.StatusAnalyzing {
		return domain.ChatMessage{}, domain.ErrAnalysisInProgress
	}
	next, err := session.Status.Transition(domain.EventSubmit)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	userMsg := domain.ChatMessage{
		ID:          uuid.NewString(),
		Role:        domain.RoleUser,
		Text:        text,
		Attachments: attachments,
		PainLevel:   painLevel,
		CreatedAt:   time.Now(),
	}
	session.Messages = append(session.Messages, userMsg)
	session.Status = next
	session.LastInteraction = time.Now()

	return userMsg, nil
}

func (s *SessionService) succeed(sessionID string, result *domain.AnalysisResult) (domain.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleModel,
		Text:      result.Text,
		CreatedAt: time.Now(),
	}

	// A reset while the call was in flight puts the session back in
	// IDLE; the late reply belongs to a discarded conversation.
	session, ok := s.sessions[sessionID]
	if !ok || session.Status != domain.StatusAnalyzing {
		return reply, false
	}

	session.Messages = append(session.Messages, reply)
	session.Status = domain.StatusResult
	session.LastInteraction = time.Now()
	return reply, true
}

func (s *SessionService) fail(sessionID string, cause error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		if next, err := session.Status.Transition(domain.EventFailure); err == nil {
			session.Status = next
		}
		session.LastInteraction = time.Now()
	}
	s.mu.Unlock()

	if s.alerts != nil {
		s.alerts.AnalysisFailure(sessionID, cause)
	}
}

// Reset returns the session to IDLE, discarding all messages and
// cancelling any in-flight speech playback.
func (s *SessionService) Reset(sessionID string) (*domain.TriageSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	session.Messages = []domain.ChatMessage{}
	session.Status = domain.StatusIdle
	session.LastInteraction = time.Now()
	s.mu.Unlock()

	if s.speech != nil {
		s.speech.Cancel(sessionID)
	}
	return s.Get(sessionID)
}

// CleanupStale evicts sessions idle beyond the TTL and returns how many
// were removed.
func (s *SessionService) CleanupStale(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	var evicted []string

	s.mu.Lock()
	for id, session := range s.sessions {
		if session.LastInteraction.Before(cutoff) && session.Status != domain.StatusAnalyzing {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		if s.speech != nil {
			s.speech.Cancel(id)
		}
	}
	return len(evicted)
}

func snapshot(session *domain.TriageSession) *domain.TriageSession {
	copied := *session
	copied.Messages = append([]domain.ChatMessage(nil), session.Messages...)
	return &copied
}
