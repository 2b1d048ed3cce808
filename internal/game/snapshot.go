package game

import (
	"slices"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// HandView is a player hand as seen by front ends
type HandView struct {
	HandRecord
	Total  int    `json:"total"`
	Soft   bool   `json:"soft"`
	Result string `json:"result,omitempty"`
}

// Snapshot is a deep copy of everything a front end may read
type Snapshot struct {
	Balance      int             `json:"balance"`
	BetAmount    int             `json:"betAmount"`
	Hands        []HandView      `json:"hands"`
	ActiveHand   int             `json:"activeHand"`
	Dealer       []deck.Instance `json:"dealer"`
	DealerTotal  int             `json:"dealerTotal"`
	PlayerTotals []int           `json:"playerTotals"`
	Status       string          `json:"status"`
	Phase        Phase           `json:"phase"`
	RoundOver    bool            `json:"roundOver"`
	Dealing      bool            `json:"dealing"`
	CanDouble    bool            `json:"canDouble"`
	CanSplit     bool            `json:"canSplit"`
	LastDealtID  string          `json:"lastDealtId,omitempty"`
	Highlighted  string          `json:"highlightedId,omitempty"`
	HoleRevealed bool            `json:"dealerHoleRevealed"`
}

// Snapshot returns the current state. It shares nothing with the game.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Balance:      g.balance,
		BetAmount:    g.betAmount,
		Hands:        make([]HandView, len(g.hands)),
		ActiveHand:   g.active,
		Dealer:       slices.Clone(g.dealer),
		DealerTotal:  g.DealerTotal(),
		PlayerTotals: g.PlayerTotals(),
		Status:       g.status,
		Phase:        g.phase,
		RoundOver:    g.phase.RoundOver(),
		Dealing:      g.phase.Dealing(),
		CanDouble:    g.CanDouble(),
		CanSplit:     g.CanSplit(),
		LastDealtID:  g.lastDealtID,
		Highlighted:  g.highlightedID,
		HoleRevealed: g.holeRevealed,
	}
	for i, h := range g.hands {
		s.Hands[i] = HandView{
			HandRecord: h.Clone(),
			Total:      h.Value(),
			Soft:       rules.IsSoft(h.Cards),
			Result:     rules.FormatNet(rules.NetResult(h.Outcome, h.Bet)),
		}
	}
	if s.Dealer == nil {
		s.Dealer = []deck.Instance{}
	}
	return s
}

// Public hides the dealer's hole card until it has been revealed. The card
// keeps its ID so the reveal can be animated, but rank and suit are cleared
// and the dealer total only counts the up card.
func (s Snapshot) Public() Snapshot {
	if s.HoleRevealed || len(s.Dealer) < 2 {
		return s
	}
	dealer := slices.Clone(s.Dealer)
	dealer[1] = deck.Instance{ID: dealer[1].ID}
	s.Dealer = dealer
	s.DealerTotal = rules.Value(dealer[:1])
	return s
}

// Active returns the active hand, if the round has one
func (s Snapshot) Active() (HandView, bool) {
	if s.RoundOver || s.ActiveHand < 0 || s.ActiveHand >= len(s.Hands) {
		return HandView{}, false
	}
	return s.Hands[s.ActiveHand], true
}
