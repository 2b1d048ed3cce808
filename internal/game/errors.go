package game

import "errors"

var (
	// ErrInvalidAction is returned when an action is not allowed in the
	// current state. The game is left unchanged.
	ErrInvalidAction = errors.New("invalid action")

	// ErrRoundInProgress is returned by StartRound while a round is active
	ErrRoundInProgress = errors.New("round in progress")

	// ErrInsufficientFunds is returned when the balance cannot cover a bet
	ErrInsufficientFunds = errors.New("insufficient funds")
)
