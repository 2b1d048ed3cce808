package deck

import (
	"errors"
	rand "math/rand/v2"
)

// Size is the number of cards in a standard deck
const Size = 52

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
// During play this is a programming error: one round never consumes 52 cards.
var ErrEmptyDeck = errors.New("deck is empty")

// Standard returns the 52 canonical cards in suit-major order, unshuffled
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Build creates a fresh deck of 52 new instances shuffled with rng
func Build(rng *rand.Rand) []Instance {
	cards := Instances(Standard())
	Shuffle(rng, cards)
	return cards
}

// Shuffle randomizes cards in place using Fisher-Yates
func Shuffle(rng *rand.Rand, cards []Instance) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Draw returns the top card and the remaining cards in their original order.
// The input slice is not modified.
func Draw(cards []Instance) (Instance, []Instance, error) {
	if len(cards) == 0 {
		return Instance{}, nil, ErrEmptyDeck
	}
	rest := make([]Instance, len(cards)-1)
	copy(rest, cards[1:])
	return cards[0], rest, nil
}

// MustDraw is Draw for callers that have already guaranteed a card is left.
// It panics with ErrEmptyDeck otherwise.
func MustDraw(cards []Instance) (Instance, []Instance) {
	card, rest, err := Draw(cards)
	if err != nil {
		panic(err)
	}
	return card, rest
}

// Stacked returns a full deck with top dealt first, followed by every other
// standard card in suit-major order. Cards in top are not repeated.
func Stacked(top []Card) []Instance {
	used := make(map[Card]bool, len(top))
	cards := make([]Card, 0, Size)
	for _, c := range top {
		used[c] = true
		cards = append(cards, c)
	}
	for _, c := range Standard() {
		if !used[c] {
			cards = append(cards, c)
		}
	}
	return Instances(cards)
}
