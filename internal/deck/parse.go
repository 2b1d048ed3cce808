package deck

import (
	"fmt"
	"strings"
)

// ParseCard parses a single card such as "As", "Th", "10h" or "K♦"
func ParseCard(s string) (Card, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Card{}, err
	}
	if len(cards) != 1 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}
	return cards[0], nil
}

// ParseCards parses a string of card notation into a slice of cards.
// Format: "AsKd10h" or "As Kd 10h" where each card is [Rank][Suit]
// Ranks: A, K, Q, J, T or 10, 9, 8, 7, 6, 5, 4, 3, 2
// Suits: s, h, d, c or ♠, ♥, ♦, ♣
func ParseCards(s string) ([]Card, error) {
	runes := []rune(strings.ReplaceAll(s, " ", ""))
	cards := []Card{}

	for i := 0; i < len(runes); {
		rank, width, err := parseRank(runes[i:])
		if err != nil {
			return nil, fmt.Errorf("invalid rank at position %d: %w", i, err)
		}
		i += width

		if i >= len(runes) {
			return nil, fmt.Errorf("incomplete card at position %d", i)
		}
		suit, err := parseSuit(runes[i])
		if err != nil {
			return nil, fmt.Errorf("invalid suit at position %d: %w", i, err)
		}
		i++

		cards = append(cards, NewCard(rank, suit))
	}

	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

func parseRank(r []rune) (Rank, int, error) {
	if len(r) >= 2 && r[0] == '1' && r[1] == '0' {
		return Ten, 2, nil
	}
	switch r[0] {
	case 'A', 'a':
		return Ace, 1, nil
	case 'K', 'k':
		return King, 1, nil
	case 'Q', 'q':
		return Queen, 1, nil
	case 'J', 'j':
		return Jack, 1, nil
	case 'T', 't':
		return Ten, 1, nil
	}
	if r[0] >= '2' && r[0] <= '9' {
		return Rank(r[0] - '0'), 1, nil
	}
	return 0, 0, fmt.Errorf("unknown rank %q", r[0])
}

func parseSuit(r rune) (Suit, error) {
	switch r {
	case 's', 'S', '♠':
		return Spades, nil
	case 'h', 'H', '♥':
		return Hearts, nil
	case 'd', 'D', '♦':
		return Diamonds, nil
	case 'c', 'C', '♣':
		return Clubs, nil
	}
	return 0, fmt.Errorf("unknown suit %q", r)
}
