package deck

import (
	"fmt"
	"sync/atomic"
)

// Suit represents a card suit
type Suit int

// Suits start at 1 so the zero Suit of a blank card renders as "?".
const (
	Spades Suit = iota + 1
	Hearts
	Diamonds
	Clubs
)

// Suits lists the four suits in deck construction order
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// MarshalText encodes the suit as its symbol
func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a suit symbol or letter. "?" decodes to the zero Suit.
func (s *Suit) UnmarshalText(text []byte) error {
	if string(text) == "?" {
		*s = 0
		return nil
	}
	runes := []rune(string(text))
	if len(runes) != 1 {
		return fmt.Errorf("invalid suit: %q", text)
	}
	suit, err := parseSuit(runes[0])
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists the thirteen ranks in deck construction order
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	default:
		return "?"
	}
}

// MarshalText encodes the rank as its label ("A", "2".."10", "J", "Q", "K")
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank label. "?" decodes to the zero Rank.
func (r *Rank) UnmarshalText(text []byte) error {
	if string(text) == "?" {
		*r = 0
		return nil
	}
	runes := []rune(string(text))
	if len(runes) == 0 {
		return fmt.Errorf("empty rank")
	}
	rank, width, err := parseRank(runes)
	if err != nil {
		return err
	}
	if width != len(runes) {
		return fmt.Errorf("invalid rank: %q", text)
	}
	*r = rank
	return nil
}

// AceHighValue is the value an Ace counts for before any soft adjustment
const AceHighValue = 11

// Value returns the blackjack point value of the rank.
// Aces count 11 here; lowering them is left to hand valuation.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return AceHighValue
	case r >= Jack:
		return 10
	default:
		return int(r)
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Value returns the blackjack point value of the card
func (c Card) Value() int {
	return c.Rank.Value()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Instance is a Card with a process-unique identity. Two instances of the
// same card are distinct; the ID only exists so front ends can tell which
// card is being animated.
type Instance struct {
	Card
	ID string `json:"id"`
}

var instanceCounter atomic.Uint64

// NewInstance wraps a card with a fresh ID
func NewInstance(c Card) Instance {
	n := instanceCounter.Add(1) - 1
	return Instance{Card: c, ID: fmt.Sprintf("card-%d", n)}
}

// Instances wraps each card with a fresh ID, preserving order
func Instances(cards []Card) []Instance {
	out := make([]Instance, len(cards))
	for i, c := range cards {
		out[i] = NewInstance(c)
	}
	return out
}
