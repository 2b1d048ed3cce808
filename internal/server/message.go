package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server messages
	MessageTypeSetBet        MessageType = "set_bet"
	MessageTypeStartRound    MessageType = "start_round"
	MessageTypeHit           MessageType = "hit"
	MessageTypeStand         MessageType = "stand"
	MessageTypeDouble        MessageType = "double"
	MessageTypeSplit         MessageType = "split"
	MessageTypeReset         MessageType = "reset"
	MessageTypeAnimationDone MessageType = "animation_done"

	// MessageTypeState is sent by clients to request the current state and
	// by the server for every state update
	MessageTypeState MessageType = "state"

	// Server to client messages
	MessageTypeError MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData
const (
	ErrorCodeInvalidAction      = "invalid_action"
	ErrorCodeInsufficientFunds  = "insufficient_funds"
	ErrorCodeRoundInProgress    = "round_in_progress"
	ErrorCodeBusy               = "busy"
	ErrorCodeInvalidMessage     = "invalid_message"
	ErrorCodeUnknownMessageType = "unknown_message_type"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server

type SetBetData struct {
	Amount float64 `json:"amount"`
}

type AnimationDoneData struct {
	CardID string `json:"cardId"`
}

// Server → Client

// StateData carries a public snapshot. Step is empty for the final state
// message of a transition and for replies to a state request.
type StateData struct {
	SessionID string        `json:"sessionId"`
	Action    game.Action   `json:"action,omitempty"`
	Step      game.StepKind `json:"step,omitempty"`
	Hand      int           `json:"hand"`
	CardID    string        `json:"cardId,omitempty"`
	State     game.Snapshot `json:"state"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
