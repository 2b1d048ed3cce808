package game

import "fmt"

// Phase is where a round is in its lifecycle
type Phase int

const (
	// PhaseBetting is the idle state before the first round and after Reset
	PhaseBetting Phase = iota
	// PhaseDealing covers the initial deal and any card drawn for the player
	PhaseDealing
	// PhasePlayerTurn is the only phase that accepts hit, stand, double and split
	PhasePlayerTurn
	// PhaseDealerTurn covers the hole card reveal and dealer draws
	PhaseDealerTurn
	// PhaseSettled means payouts are applied and a new round may start
	PhaseSettled
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseDealerTurn:
		return "dealer_turn"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseBetting; candidate <= PhaseSettled; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// RoundOver is true when no round is active
func (p Phase) RoundOver() bool {
	return p == PhaseBetting || p == PhaseSettled
}

// Dealing is true while cards are in flight and player actions are blocked
func (p Phase) Dealing() bool {
	return p == PhaseDealing || p == PhaseDealerTurn
}
