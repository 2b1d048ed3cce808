package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

// ErrBusy is returned for actions that arrive while a transition is still
// being played back to the client.
var ErrBusy = errors.New("session busy")

// ActionFunc applies one action to a game
type ActionFunc func(*game.Game) (*game.Transition, error)

// Session is one player's game plus the playback of its transitions. Actions
// are applied immediately; their steps are then sent at presentation speed
// and no new action is accepted until playback has finished.
type Session struct {
	id     string
	logger *log.Logger
	pacer  *game.Pacer
	send   func(*Message) error

	seed    int64
	monitor RoundMonitor

	mu     sync.Mutex
	game   *game.Game
	busy   bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession wraps g. Every state update is delivered through send.
func NewSession(g *game.Game, pacer *game.Pacer, send func(*Message) error, logger *log.Logger) *Session {
	id := uuid.NewString()[:8]
	return &Session{
		id:      id,
		logger:  logger.WithPrefix("session").With("session", id),
		pacer:   pacer,
		send:    send,
		game:    g,
		monitor: NullRoundMonitor{},
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Busy reports whether a transition is still being played back
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Do applies act and starts playing back its transition. It fails with
// ErrBusy while an earlier transition is still playing; errors from act are
// returned as is and leave the session idle.
func (s *Session) Do(ctx context.Context, act ActionFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}

	t, err := act(s.game)
	if err != nil {
		return err
	}
	if settles(t) {
		s.reportRound()
	}

	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.busy = true
	s.cancel = cancel
	s.done = done

	s.logger.Debug("Playing transition", "action", t.Action, "steps", len(t.Steps))
	go s.play(playCtx, t, done)
	return nil
}

// Reset stops any playback in progress and resets the game. Unlike other
// actions it is never rejected as busy.
func (s *Session) Reset(ctx context.Context) error {
	s.Stop()
	return s.Do(ctx, func(g *game.Game) (*game.Transition, error) {
		return g.Reset(), nil
	})
}

// Stop cancels playback in progress and waits for it to end
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Ack forwards an animation-complete signal to the pacer
func (s *Session) Ack(cardID string) {
	s.pacer.Ack(cardID)
}

// Snapshot returns the game's current state
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// SendState sends the current public state
func (s *Session) SendState() error {
	return s.sendState("", game.Step{State: s.Snapshot()})
}

func (s *Session) play(ctx context.Context, t *game.Transition, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		s.cancel()
		s.busy = false
		s.cancel = nil
		s.done = nil
		s.mu.Unlock()
	}()

	err := s.pacer.Play(ctx, t, func(step game.Step) error {
		return s.sendState(t.Action, step)
	})
	if err != nil {
		s.logger.Debug("Playback stopped", "action", t.Action, "error", err)
		return
	}

	final := t.Final()
	if err := s.sendState(t.Action, game.Step{Hand: final.ActiveHand, State: final}); err != nil {
		s.logger.Debug("Failed to send final state", "error", err)
	}
}

func settles(t *game.Transition) bool {
	for _, step := range t.Steps {
		if step.Kind == game.StepSettle {
			return true
		}
	}
	return false
}

func (s *Session) reportRound() {
	result, err := statistics.ResultFromHands(s.seed, s.game.Hands())
	if err != nil {
		s.logger.Warn("Settled round has undecided hands", "error", err)
		return
	}
	s.logger.Debug("Round complete", "net", result.Net, "balance", s.game.Balance())
	s.monitor.OnRoundComplete(RoundOutcome{
		SessionID: s.id,
		Balance:   s.game.Balance(),
		Result:    result,
	})
}

func (s *Session) sendState(action game.Action, step game.Step) error {
	msg, err := NewMessage(MessageTypeState, StateData{
		SessionID: s.id,
		Action:    action,
		Step:      step.Kind,
		Hand:      step.Hand,
		CardID:    step.CardID,
		State:     step.State.Public(),
	})
	if err != nil {
		return err
	}
	return s.send(msg)
}
