package rules

import "fmt"

// Outcome is the result of one player hand
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeWin       Outcome = "Win"
	OutcomeLose      Outcome = "Lose"
	OutcomePush      Outcome = "Push"
	OutcomeBust      Outcome = "Bust"
	OutcomeBlackjack Outcome = "Blackjack"
)

// String returns the outcome name, or "-" while undecided
func (o Outcome) String() string {
	if o == OutcomeNone {
		return "-"
	}
	return string(o)
}

// IsFinal reports whether the outcome was fixed during play and must not be
// recomputed when the dealer resolves.
func (o Outcome) IsFinal() bool {
	return o == OutcomeBust || o == OutcomeBlackjack || o == OutcomeLose
}

// NetResult is the signed gain or loss on bet for a decided outcome. ok is
// false while the outcome is undecided.
func NetResult(o Outcome, bet int) (net int, ok bool) {
	switch o {
	case OutcomeBlackjack:
		return bet * BlackjackPayoutMultiplier, true
	case OutcomeWin:
		return bet, true
	case OutcomePush:
		return 0, true
	case OutcomeBust, OutcomeLose:
		return -bet, true
	default:
		return 0, false
	}
}

// Credit is what settlement pays back to the balance for a hand whose bet
// was already deducted. Credit(o, bet) - bet == NetResult(o, bet).
func Credit(o Outcome, bet int) int {
	switch o {
	case OutcomeBlackjack:
		return bet * BlackjackTotalPayout
	case OutcomeWin:
		return bet * WinTotalPayout
	case OutcomePush:
		return bet
	default:
		return 0
	}
}

// FormatNet renders a net result for display. An absent result renders as "".
func FormatNet(net int, ok bool) string {
	switch {
	case !ok:
		return ""
	case net > 0:
		return fmt.Sprintf("Won $%d", net)
	case net < 0:
		return fmt.Sprintf("Lost $%d", -net)
	default:
		return "Push ($0)"
	}
}
