// Package core implements the conversation-session orchestration: turn
// encoding, history bookkeeping, reply parsing with fallback recovery,
// and reconciliation into the canonical record.
package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

// State names the per-submission lifecycle stages.
type State string

const (
	StateIdle          State = "idle"
	StateEncoding      State = "encoding"
	StateAwaitingModel State = "awaiting_model"
	StateParsing       State = "parsing"
	StateRecovering    State = "recovering"
	StateReconciled    State = "reconciled"
)

// Session owns one conversation's history and drives a submission through
// encode -> send -> parse -> (recover) -> reconcile. Submissions are
// serialized: a second Exchange while one is in flight is rejected with a
// session-busy error rather than queued.
type Session struct {
	gateway    ModelGateway
	translator Translator
	history    *History
	logger     *slog.Logger

	mu    sync.Mutex
	state State
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHistory seeds the session with replayed turns.
func WithHistory(turns []types.Turn) SessionOption {
	return func(s *Session) {
		s.history = NewHistory(turns)
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session around the given upstreams. The translator
// may be nil; recovery and backfill then degrade to placeholders.
func NewSession(gateway ModelGateway, translator Translator, opts ...SessionOption) *Session {
	s := &Session{
		gateway:    gateway,
		translator: translator,
		history:    NewHistory(nil),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a snapshot of the stored turns.
func (s *Session) History() []types.Turn {
	return s.history.Snapshot()
}

// ExchangeResult is the outcome of one completed submission.
type ExchangeResult struct {
	Display types.DisplayTurn
	History []types.Turn

	// Recovered is true when the model reply failed to parse and the
	// record was rebuilt through the fallback translation path.
	Recovered bool
}

// Exchange runs one full turn. On any failure before reconciliation the
// history is left untouched and the session returns to idle, ready for
// resubmission. Parse failures are never returned; they are recovered
// into a best-effort record.
func (s *Session) Exchange(ctx context.Context, pending types.PendingTurnInput) (ExchangeResult, error) {
	if !s.mu.TryLock() {
		return ExchangeResult{}, NewSessionBusyError()
	}
	defer func() {
		s.state = StateIdle
		s.mu.Unlock()
	}()

	s.state = StateEncoding
	encoded, err := EncodeTurn(pending, s.history.Snapshot())
	if err != nil {
		return ExchangeResult{}, err
	}

	s.state = StateAwaitingModel
	raw, err := s.gateway.GenerateReply(ctx, encoded)
	if err != nil {
		return ExchangeResult{}, err
	}

	s.state = StateParsing
	fields, degraded, parseErr := ParseReply(raw)
	if degraded && s.logger != nil {
		s.logger.Warn("user transcript missing or sentinel in model reply")
	}

	recovered := false
	if parseErr != nil {
		s.state = StateRecovering
		if s.logger != nil {
			s.logger.Warn("model reply not parseable, recovering via translation", "error", parseErr)
		}
		fields = s.recoverFields(ctx, raw, pending)
		recovered = true
	}

	display := Reconcile(ctx, fields, pending, s.history, s.translator, s.logger)
	s.state = StateReconciled

	return ExchangeResult{
		Display:   display,
		History:   s.history.Snapshot(),
		Recovered: recovered,
	}, nil
}

// recoverFields rebuilds a reply record from an unparseable model reply.
// The fence-stripped text stands in as the English reply; its Japanese
// rendering comes from the translation service, or the fixed placeholder
// when that is unavailable. This path never fails.
func (s *Session) recoverFields(ctx context.Context, raw string, pending types.PendingTurnInput) types.FieldSet {
	replyEN := StripFence(raw)

	replyJP := types.ParseFailurePlaceholder
	if s.translator != nil {
		translated, err := s.translator.Translate(ctx, replyEN, types.LangEnglish, types.LangJapanese)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("fallback translation failed", "error", NewTranslationUnavailableError(err))
			}
		} else {
			replyJP = translated
		}
	}

	transcript := pending.Text
	if transcript == "" {
		transcript = types.TranscriptSentinel
	}

	return types.FieldSet{
		"user_transcript": transcript,
		"ai_response_en":  replyEN,
		"ai_response_jp":  replyJP,
	}
}
