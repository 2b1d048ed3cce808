package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// Status messages shown to the player
const (
	StatusPlaceBet          = "Place your bet to begin."
	StatusDealing           = "Dealing cards..."
	StatusChooseMove        = "Choose your move: hit, stand, double, or split."
	StatusHitOrStand        = "Hit, stand, double, or split?"
	StatusBusted            = "You busted this hand."
	StatusTwentyOne         = "21! Standing automatically."
	StatusStanding          = "Standing on this hand."
	StatusDoubled           = "Double complete. Standing on this hand."
	StatusDoubledBust       = "Doubled and busted."
	StatusSplit             = "Hands split! Play the first hand."
	StatusNextHand          = "Next hand - choose your move."
	StatusDealerTurn        = "Dealer's turn..."
	StatusRoundComplete     = "Round complete. Start a new round when ready."
	StatusInsufficientFunds = "Insufficient funds for that bet."
	StatusBothBlackjack     = "Both have blackjack. Push."
	StatusPlayerBlackjack   = "Blackjack! Paid 2:1."
	StatusDealerBlackjack   = "Dealer has blackjack. You lose this round."
)

// DeckSource supplies the deck for each new round
type DeckSource func() []deck.Instance

// Game owns all round state for one player against the dealer. It is the only
// thing that mutates that state; every action runs to completion before it
// returns. A Game is not safe for concurrent use.
type Game struct {
	logger     *log.Logger
	deckSource DeckSource
	startBal   int

	balance   int
	betAmount int
	deck      []deck.Instance
	hands     []HandRecord
	active    int
	dealer    []deck.Instance
	phase     Phase
	status    string

	lastDealtID   string
	highlightedID string
	holeRevealed  bool

	pending *Transition
}

// Option configures a Game
type Option func(*Game)

// WithLogger sets the logger used for round lifecycle debug output
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		g.logger = logger.WithPrefix("game")
	}
}

// WithDeckSource replaces the shuffled deck used at each round start
func WithDeckSource(src DeckSource) Option {
	return func(g *Game) {
		g.deckSource = src
	}
}

// WithBalance sets the starting balance. Reset restores this value.
func WithBalance(balance int) Option {
	return func(g *Game) {
		g.startBal = balance
	}
}

// New creates a game in the betting phase. rng shuffles every round's deck
// unless WithDeckSource is given.
func New(rng *rand.Rand, opts ...Option) *Game {
	g := &Game{
		logger:   log.New(io.Discard),
		startBal: rules.StartingBalance,
	}
	g.deckSource = func() []deck.Instance {
		return deck.Build(rng)
	}
	for _, opt := range opts {
		opt(g)
	}
	g.restore()
	return g
}

func (g *Game) restore() {
	g.balance = g.startBal
	g.betAmount = rules.MinBet
	g.deck = nil
	g.hands = nil
	g.active = 0
	g.dealer = nil
	g.phase = PhaseBetting
	g.status = StatusPlaceBet
	g.lastDealtID = ""
	g.highlightedID = ""
	g.holeRevealed = false
}

// Balance returns the player's balance
func (g *Game) Balance() int { return g.balance }

// BetAmount returns the bet that the next round will use
func (g *Game) BetAmount() int { return g.betAmount }

// Phase returns the current phase
func (g *Game) Phase() Phase { return g.phase }

// Status returns the current status message
func (g *Game) Status() string { return g.status }

// RoundOver reports whether no round is active
func (g *Game) RoundOver() bool { return g.phase.RoundOver() }

// Dealing reports whether cards are in flight
func (g *Game) Dealing() bool { return g.phase.Dealing() }

// ActiveHand returns the index of the hand being played
func (g *Game) ActiveHand() int { return g.active }

// DeckRemaining returns the number of undealt cards this round
func (g *Game) DeckRemaining() int { return len(g.deck) }

// Hands returns a copy of the player hands
func (g *Game) Hands() []HandRecord {
	out := make([]HandRecord, len(g.hands))
	for i, h := range g.hands {
		out[i] = h.Clone()
	}
	return out
}

// DealerTotal returns the value of the dealer's full hand
func (g *Game) DealerTotal() int {
	return rules.Value(g.dealer)
}

// PlayerTotals returns the value of each player hand
func (g *Game) PlayerTotals() []int {
	totals := make([]int, len(g.hands))
	for i, h := range g.hands {
		totals[i] = h.Value()
	}
	return totals
}

// CanDouble reports whether Double would be accepted right now
func (g *Game) CanDouble() bool {
	h := g.activeHand()
	return h != nil && g.acceptsPlay() && h.canDouble(g.balance)
}

// CanSplit reports whether Split would be accepted right now
func (g *Game) CanSplit() bool {
	h := g.activeHand()
	return h != nil && g.acceptsPlay() && h.canSplit(g.balance)
}

func (g *Game) acceptsPlay() bool {
	return !g.phase.RoundOver() && !g.phase.Dealing()
}

func (g *Game) activeHand() *HandRecord {
	if g.active < 0 || g.active >= len(g.hands) {
		return nil
	}
	return &g.hands[g.active]
}

// SetBetAmount records the wager for the next round, normalized into the
// table limits. A round already in play keeps the bet it started with.
func (g *Game) SetBetAmount(amount float64) *Transition {
	g.begin(ActionSetBet)
	g.betAmount = rules.NormalizeBet(amount)
	g.record(StepBet, g.active, "")
	return g.finish()
}

// Reset restores the starting balance and clears all round state. It always
// succeeds, whatever the current phase.
func (g *Game) Reset() *Transition {
	g.begin(ActionReset)
	g.restore()
	g.logger.Debug("Game reset", "balance", g.balance)
	g.record(StepReset, 0, "")
	return g.finish()
}

func (g *Game) begin(action Action) {
	g.pending = &Transition{Action: action}
}

func (g *Game) record(kind StepKind, hand int, cardID string) {
	g.pending.Steps = append(g.pending.Steps, Step{
		Kind:   kind,
		Hand:   hand,
		CardID: cardID,
		State:  g.Snapshot(),
	})
}

func (g *Game) finish() *Transition {
	t := g.pending
	g.pending = nil
	return t
}
