package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// testConfig waits a long time for animation acks so tests control when
// each card finishes
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Pacing.DealDelayMS = 1
	cfg.Pacing.AnimationTimeoutMS = 60_000
	return cfg
}

func stackedDeck(cards string) Option {
	top := deck.MustParseCards(cards)
	return WithGameOptions(game.WithDeckSource(func() []deck.Instance {
		return deck.Stacked(top)
	}))
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

// startTestServer starts a server and connects one client to it. The
// client's initial state message is consumed.
func startTestServer(t *testing.T, opts ...Option) (*Server, *testClient) {
	t.Helper()

	srv := NewServer(testConfig(), testLogger(), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	c := &testClient{t: t, conn: conn}
	initial := c.expectState()
	require.Empty(t, initial.Step)
	return srv, c
}

func (c *testClient) send(typ MessageType, data any) {
	c.t.Helper()
	msg := map[string]any{"type": typ}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) read() *Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return &msg
}

func (c *testClient) expectState() StateData {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, MessageTypeState, msg.Type, "data: %s", msg.Data)
	var data StateData
	require.NoError(c.t, json.Unmarshal(msg.Data, &data))
	return data
}

func (c *testClient) expectError(code string) ErrorData {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, MessageTypeError, msg.Type, "data: %s", msg.Data)
	var data ErrorData
	require.NoError(c.t, json.Unmarshal(msg.Data, &data))
	require.Equal(c.t, code, data.Code, data.Message)
	return data
}

// playback reads state messages until the final one of a transition,
// acknowledging every card animation along the way
func (c *testClient) playback() (steps []StateData, final StateData) {
	c.t.Helper()
	for {
		data := c.expectState()
		if data.Step == "" {
			return steps, data
		}
		steps = append(steps, data)
		if data.CardID != "" {
			c.send(MessageTypeAnimationDone, AnimationDoneData{CardID: data.CardID})
		}
	}
}
