package game

// Action names an entry point on the Game
type Action string

const (
	ActionSetBet Action = "set_bet"
	ActionStart  Action = "start_round"
	ActionHit    Action = "hit"
	ActionStand  Action = "stand"
	ActionDouble Action = "double"
	ActionSplit  Action = "split"
	ActionReset  Action = "reset"
)

// StepKind describes a single observable mutation within an action
type StepKind string

const (
	StepRoundStart StepKind = "round_start"
	StepDeal       StepKind = "deal"
	StepSplit      StepKind = "split"
	StepOutcome    StepKind = "outcome"
	StepAdvance    StepKind = "advance"
	StepDealerTurn StepKind = "dealer_turn"
	StepRevealHole StepKind = "reveal_hole"
	StepSettle     StepKind = "settle"
	StepAwait      StepKind = "await_action"
	StepBet        StepKind = "bet"
	StepReset      StepKind = "reset"
)

// DealerHand is the Hand index used in steps that concern the dealer
const DealerHand = -1

// Step is one discrete state change. State is the full snapshot right after
// the change, so a front end can replay steps with whatever pacing it likes.
type Step struct {
	Kind StepKind `json:"kind"`
	// Hand is the player hand index the step concerns, or DealerHand
	Hand int `json:"hand"`
	// CardID is set for steps that move or reveal a card
	CardID string   `json:"cardId,omitempty"`
	State  Snapshot `json:"state"`
}

// Transition is the ordered list of steps produced by one action. All of
// them are already applied when the action returns.
type Transition struct {
	Action Action `json:"action"`
	Steps  []Step `json:"steps"`
}

// Final returns the state after the last step
func (t *Transition) Final() Snapshot {
	return t.Steps[len(t.Steps)-1].State
}

// Cards returns the ids of cards that were dealt or revealed, in order
func (t *Transition) Cards() []string {
	var ids []string
	for _, s := range t.Steps {
		if s.CardID != "" {
			ids = append(ids, s.CardID)
		}
	}
	return ids
}
