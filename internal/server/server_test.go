package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := NewServer(testConfig(), testLogger())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "OK", string(body))
}

func TestInitialState(t *testing.T) {
	t.Parallel()

	_, c := startTestServer(t)
	c.send(MessageTypeState, nil)
	state := c.expectState()

	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, rules.StartingBalance, state.State.Balance)
	assert.Equal(t, game.PhaseBetting, state.State.Phase)
	assert.Equal(t, game.StatusPlaceBet, state.State.Status)
}

func TestRoundOverWebSocket(t *testing.T) {
	t.Parallel()

	_, c := startTestServer(t, stackedDeck("10s 9h 7d 8c"))

	c.send(MessageTypeSetBet, SetBetData{Amount: 25})
	_, final := c.playback()
	assert.Equal(t, 25, final.State.BetAmount)

	c.send(MessageTypeStartRound, nil)
	steps, final := c.playback()

	require.Len(t, steps, 6)
	assert.Equal(t, game.StepRoundStart, steps[0].Step)
	for _, s := range steps[1:5] {
		assert.Equal(t, game.StepDeal, s.Step)
		assert.NotEmpty(t, s.CardID)
		assert.True(t, s.State.Dealing)
	}
	assert.Equal(t, game.ActionStart, final.Action)
	assert.Equal(t, 975, final.State.Balance)
	assert.Equal(t, game.PhasePlayerTurn, final.State.Phase)

	// hole card stays hidden until the dealer's turn
	require.Len(t, final.State.Dealer, 2)
	assert.Equal(t, deck.NewCard(deck.Nine, deck.Hearts), final.State.Dealer[0].Card)
	assert.Equal(t, deck.Card{}, final.State.Dealer[1].Card)
	assert.Equal(t, steps[4].CardID, final.State.Dealer[1].ID)
	assert.Equal(t, 9, final.State.DealerTotal)

	c.send(MessageTypeStand, nil)
	steps, final = c.playback()

	var revealed bool
	for _, s := range steps {
		if s.Step == game.StepRevealHole {
			revealed = true
			assert.Equal(t, deck.NewCard(deck.Eight, deck.Clubs), s.State.Dealer[1].Card)
		}
	}
	assert.True(t, revealed)
	assert.True(t, final.State.RoundOver)
	assert.Equal(t, rules.OutcomePush, final.State.Hands[0].Outcome)
	assert.Equal(t, 1000, final.State.Balance)
	assert.Equal(t, 17, final.State.DealerTotal)
}

func TestBusyWhilePlaying(t *testing.T) {
	t.Parallel()

	_, c := startTestServer(t, stackedDeck("10s 9h 7d 8c"))

	c.send(MessageTypeStartRound, nil)
	assert.Equal(t, game.StepRoundStart, c.expectState().Step)

	// the first card waits for its animation ack, so the session stays busy
	first := c.expectState()
	require.Equal(t, game.StepDeal, first.Step)
	c.send(MessageTypeHit, nil)
	c.expectError(ErrorCodeBusy)

	c.send(MessageTypeAnimationDone, AnimationDoneData{CardID: first.CardID})
	_, final := c.playback()
	assert.Equal(t, game.PhasePlayerTurn, final.State.Phase)
	assert.Len(t, final.State.Hands[0].Cards, 2, "rejected hit dealt nothing")
}

func TestActionErrors(t *testing.T) {
	t.Parallel()

	_, c := startTestServer(t, stackedDeck("10s 9h 7d 8c"))

	c.send(MessageTypeHit, nil)
	c.expectError(ErrorCodeInvalidAction)

	c.send(MessageTypeStartRound, nil)
	c.playback()

	c.send(MessageTypeStartRound, nil)
	c.expectError(ErrorCodeRoundInProgress)

	c.send(MessageTypeSplit, nil)
	c.expectError(ErrorCodeInvalidAction)

	c.send("shuffle", nil)
	c.expectError(ErrorCodeUnknownMessageType)

	c.send(MessageTypeSetBet, "fifty")
	c.expectError(ErrorCodeInvalidMessage)

	c.send(MessageTypeAnimationDone, nil)
	c.expectError(ErrorCodeInvalidMessage)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	c.expectError(ErrorCodeInvalidMessage)

	// the connection is still usable
	c.send(MessageTypeState, nil)
	assert.Equal(t, game.PhasePlayerTurn, c.expectState().State.Phase)
}

func TestInsufficientFundsSendsState(t *testing.T) {
	t.Parallel()

	_, c := startTestServer(t, WithGameOptions(game.WithBalance(5)))

	c.send(MessageTypeStartRound, nil)
	c.expectError(ErrorCodeInsufficientFunds)

	state := c.expectState()
	assert.Equal(t, game.StatusInsufficientFunds, state.State.Status)
	assert.Equal(t, 5, state.State.Balance)
}

func TestResetInterruptsPlayback(t *testing.T) {
	t.Parallel()

	_, c := startTestServer(t, stackedDeck("10s 9h 7d 8c"))

	c.send(MessageTypeStartRound, nil)
	c.expectState()
	require.Equal(t, game.StepDeal, c.expectState().Step)

	c.send(MessageTypeReset, nil)
	steps, final := c.playback()

	require.Len(t, steps, 1)
	assert.Equal(t, game.StepReset, steps[0].Step)
	assert.Equal(t, game.ActionReset, final.Action)
	assert.Equal(t, rules.StartingBalance, final.State.Balance)
	assert.Equal(t, game.PhaseBetting, final.State.Phase)
	assert.Empty(t, final.State.Hands)
}

func TestConnectionCount(t *testing.T) {
	t.Parallel()

	srv, c := startTestServer(t)
	assert.Equal(t, 1, srv.ConnectionCount())

	require.NoError(t, c.conn.Close())
	assert.Eventually(t, func() bool {
		return srv.ConnectionCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownBeforeStart(t *testing.T) {
	t.Parallel()

	srv := NewServer(testConfig(), testLogger())
	require.NoError(t, srv.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept listening after Shutdown")
	}
}

func TestShutdownStopsRunningServer(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.Port = 0
	srv := NewServer(cfg, testLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Shutdown may land before or after Start has begun listening
	require.Eventually(t, func() bool {
		_ = srv.Shutdown(context.Background())
		select {
		case err := <-done:
			assert.NoError(t, err)
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
