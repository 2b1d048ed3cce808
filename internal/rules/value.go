package rules

// Scorable is anything that has a blackjack point value.
// deck.Card and deck.Instance both satisfy it.
type Scorable interface {
	Value() int
	IsAce() bool
}

// Value returns the best total for a hand: Aces count 11 and are lowered to
// 1 one at a time, only while the total is over 21.
func Value[C Scorable](cards []C) int {
	total, _ := score(cards)
	return total
}

// IsSoft reports whether the hand still counts at least one Ace as 11
func IsSoft[C Scorable](cards []C) bool {
	_, soft := score(cards)
	return soft > 0
}

func score[C Scorable](cards []C) (total, softAces int) {
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	for total > BlackjackTarget && softAces > 0 {
		total -= AceAdjustment
		softAces--
	}
	return total, softAces
}

// IsBlackjack is true only for a two-card 21
func IsBlackjack[C Scorable](cards []C) bool {
	return len(cards) == BlackjackHandLength && Value(cards) == BlackjackTarget
}

// IsBust reports whether the hand is over 21
func IsBust[C Scorable](cards []C) bool {
	return Value(cards) > BlackjackTarget
}

// DealerShouldStand reports whether the dealer stops drawing at this total.
// The dealer stands on all 17s, soft ones included.
func DealerShouldStand(value int) bool {
	return value >= DealerStandThreshold
}
