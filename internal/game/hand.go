package game

import (
	"slices"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// HandRecord is one player hand with its own bet, outcome and doubled flag.
// Keeping them together means a split can never leave them misaligned.
type HandRecord struct {
	Cards   []deck.Instance `json:"cards"`
	Bet     int             `json:"bet"`
	Outcome rules.Outcome   `json:"outcome"`
	Doubled bool            `json:"doubled"`
}

// Value returns the hand total
func (h HandRecord) Value() int {
	return rules.Value(h.Cards)
}

// Clone returns a copy that shares no cards with h
func (h HandRecord) Clone() HandRecord {
	h.Cards = slices.Clone(h.Cards)
	return h
}

func (h HandRecord) canDouble(balance int) bool {
	return len(h.Cards) == rules.BlackjackHandLength &&
		!h.Doubled &&
		h.Bet > 0 &&
		balance >= h.Bet
}

// Split eligibility compares point values, not ranks: a 10 and a King split.
func (h HandRecord) canSplit(balance int) bool {
	return len(h.Cards) == rules.BlackjackHandLength &&
		h.Cards[0].Value() == h.Cards[1].Value() &&
		h.Bet > 0 &&
		balance >= h.Bet
}
