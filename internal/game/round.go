package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// StartRound takes the bet, deals two cards each to the player and dealer
// (player first, alternating) and settles immediately if anyone has
// blackjack.
func (g *Game) StartRound() (*Transition, error) {
	if !g.phase.RoundOver() || g.phase.Dealing() {
		return nil, ErrRoundInProgress
	}

	bet := rules.NormalizeBet(float64(g.betAmount))
	if g.balance < bet {
		g.status = StatusInsufficientFunds
		return nil, fmt.Errorf("%w: balance %d, bet %d", ErrInsufficientFunds, g.balance, bet)
	}

	g.begin(ActionStart)

	g.deck = g.deckSource()
	g.balance -= bet
	g.hands = []HandRecord{{Bet: bet}}
	g.active = 0
	g.dealer = nil
	g.phase = PhaseDealing
	g.status = StatusDealing
	g.lastDealtID = ""
	g.highlightedID = ""
	g.holeRevealed = false
	g.record(StepRoundStart, 0, "")

	g.logger.Debug("Round started", "bet", bet, "balance", g.balance)

	for i := range 2 * rules.BlackjackHandLength {
		if i%2 == 0 {
			g.dealToPlayer(0)
		} else {
			g.dealToDealer()
		}
	}

	g.highlightedID = ""
	playerBJ := rules.IsBlackjack(g.hands[0].Cards)
	dealerBJ := rules.IsBlackjack(g.dealer)

	switch {
	case playerBJ && dealerBJ:
		g.holeRevealed = true
		g.settleEarly(rules.OutcomePush, StatusBothBlackjack)
	case playerBJ:
		g.settleEarly(rules.OutcomeBlackjack, StatusPlayerBlackjack)
	case dealerBJ:
		g.holeRevealed = true
		g.settleEarly(rules.OutcomeLose, StatusDealerBlackjack)
	default:
		g.phase = PhasePlayerTurn
		g.status = StatusChooseMove
		g.record(StepAwait, 0, "")
	}

	return g.finish(), nil
}

func (g *Game) settleEarly(outcome rules.Outcome, status string) {
	h := &g.hands[0]
	h.Outcome = outcome
	g.balance += rules.Credit(outcome, h.Bet)
	g.phase = PhaseSettled
	g.status = status
	g.logger.Debug("Round settled on deal", "outcome", outcome, "balance", g.balance)
	g.record(StepSettle, 0, "")
}

// Hit draws one card to the active hand. A bust or 21 ends the hand.
func (g *Game) Hit() (*Transition, error) {
	if err := g.checkPlay(); err != nil {
		return nil, err
	}
	if len(g.deck) == 0 {
		return nil, fmt.Errorf("%w: deck is empty", ErrInvalidAction)
	}

	g.begin(ActionHit)
	idx := g.active

	g.phase = PhaseDealing
	g.dealToPlayer(idx)
	g.highlightedID = ""
	g.phase = PhasePlayerTurn

	switch total := g.hands[idx].Value(); {
	case total > rules.BlackjackTarget:
		g.hands[idx].Outcome = rules.OutcomeBust
		g.status = StatusBusted
		g.record(StepOutcome, idx, "")
		g.advance()
	case total == rules.BlackjackTarget:
		g.status = StatusTwentyOne
		g.record(StepAwait, idx, "")
		g.advance()
	default:
		g.status = StatusHitOrStand
		g.record(StepAwait, idx, "")
	}

	return g.finish(), nil
}

// Stand ends the active hand without changing it
func (g *Game) Stand() (*Transition, error) {
	if err := g.checkPlay(); err != nil {
		return nil, err
	}

	g.begin(ActionStand)
	g.status = StatusStanding
	g.record(StepAwait, g.active, "")
	g.advance()
	return g.finish(), nil
}

// Double doubles the active hand's bet, draws exactly one card and ends the
// hand. Only allowed on a two-card hand that has not doubled yet.
func (g *Game) Double() (*Transition, error) {
	if err := g.checkPlay(); err != nil {
		return nil, err
	}
	h := &g.hands[g.active]
	switch {
	case len(h.Cards) != rules.BlackjackHandLength:
		return nil, fmt.Errorf("%w: can only double on two cards", ErrInvalidAction)
	case h.Doubled:
		return nil, fmt.Errorf("%w: hand already doubled", ErrInvalidAction)
	case h.Bet <= 0:
		return nil, fmt.Errorf("%w: hand has no bet", ErrInvalidAction)
	case g.balance < h.Bet:
		return nil, fmt.Errorf("%w: balance %d, need %d to double", ErrInvalidAction, g.balance, h.Bet)
	case len(g.deck) == 0:
		return nil, fmt.Errorf("%w: deck is empty", ErrInvalidAction)
	}

	g.begin(ActionDouble)
	idx := g.active

	g.balance -= h.Bet
	h.Bet *= 2
	h.Doubled = true
	g.phase = PhaseDealing
	g.dealToPlayer(idx)
	g.highlightedID = ""
	g.phase = PhasePlayerTurn

	if rules.IsBust(g.hands[idx].Cards) {
		g.hands[idx].Outcome = rules.OutcomeBust
		g.status = StatusDoubledBust
		g.record(StepOutcome, idx, "")
	} else {
		g.status = StatusDoubled
		g.record(StepAwait, idx, "")
	}

	g.advance()
	return g.finish(), nil
}

// Split turns a two-card hand of equal point value into two hands, each
// with the original bet, and deals one more card to each. Split hands may be
// split again without limit.
func (g *Game) Split() (*Transition, error) {
	if err := g.checkPlay(); err != nil {
		return nil, err
	}
	h := g.hands[g.active]
	switch {
	case len(h.Cards) != rules.BlackjackHandLength:
		return nil, fmt.Errorf("%w: can only split two cards", ErrInvalidAction)
	case h.Cards[0].Value() != h.Cards[1].Value():
		return nil, fmt.Errorf("%w: cards have different values", ErrInvalidAction)
	case h.Bet <= 0:
		return nil, fmt.Errorf("%w: hand has no bet", ErrInvalidAction)
	case g.balance < h.Bet:
		return nil, fmt.Errorf("%w: balance %d, need %d to split", ErrInvalidAction, g.balance, h.Bet)
	case len(g.deck) < 2:
		return nil, fmt.Errorf("%w: not enough cards to split", ErrInvalidAction)
	}

	g.begin(ActionSplit)
	idx := g.active

	g.balance -= h.Bet
	first := HandRecord{Cards: []deck.Instance{h.Cards[0]}, Bet: h.Bet}
	second := HandRecord{Cards: []deck.Instance{h.Cards[1]}, Bet: h.Bet}

	hands := make([]HandRecord, 0, len(g.hands)+1)
	hands = append(hands, g.hands[:idx]...)
	hands = append(hands, first, second)
	hands = append(hands, g.hands[idx+1:]...)
	g.hands = hands

	g.status = StatusSplit
	g.record(StepSplit, idx, "")

	g.phase = PhaseDealing
	g.dealToPlayer(idx)
	g.dealToPlayer(idx + 1)
	g.highlightedID = ""
	g.phase = PhasePlayerTurn
	g.record(StepAwait, idx, "")

	g.logger.Debug("Hand split", "hand", idx, "hands", len(g.hands), "balance", g.balance)
	return g.finish(), nil
}

func (g *Game) checkPlay() error {
	switch {
	case g.phase.RoundOver():
		return fmt.Errorf("%w: round is over", ErrInvalidAction)
	case g.phase.Dealing():
		return fmt.Errorf("%w: cards are being dealt", ErrInvalidAction)
	case g.activeHand() == nil:
		return fmt.Errorf("%w: no active hand", ErrInvalidAction)
	}
	return nil
}

// advance moves to the next player hand, or to the dealer once every hand
// has finished.
func (g *Game) advance() {
	if g.active+1 < len(g.hands) {
		g.active++
		g.status = StatusNextHand
		g.record(StepAdvance, g.active, "")
		return
	}
	g.playDealer()
}

func (g *Game) playDealer() {
	g.phase = PhaseDealerTurn
	g.status = StatusDealerTurn
	g.record(StepDealerTurn, DealerHand, "")

	if len(g.dealer) >= 2 {
		hole := g.dealer[1].ID
		g.lastDealtID = hole
		g.highlightedID = hole
		g.holeRevealed = true
		g.record(StepRevealHole, DealerHand, hole)
	}

	for !rules.DealerShouldStand(g.DealerTotal()) {
		g.dealToDealer()
	}

	g.settle()
}

// settle decides every hand still in contest against the dealer and pays
// all credits as a single balance update.
func (g *Game) settle() {
	dealerTotal := g.DealerTotal()
	payout := 0

	for i := range g.hands {
		h := &g.hands[i]
		if h.Outcome.IsFinal() {
			continue
		}
		h.Outcome = compare(h.Value(), dealerTotal)
		payout += rules.Credit(h.Outcome, h.Bet)
	}

	g.balance += payout
	g.highlightedID = ""
	g.phase = PhaseSettled
	g.status = StatusRoundComplete
	g.logger.Debug("Round settled", "dealer", dealerTotal, "payout", payout, "balance", g.balance)
	g.record(StepSettle, DealerHand, "")
}

func compare(player, dealer int) rules.Outcome {
	switch {
	case player > rules.BlackjackTarget:
		return rules.OutcomeBust
	case dealer > rules.BlackjackTarget:
		return rules.OutcomeWin
	case player > dealer:
		return rules.OutcomeWin
	case player < dealer:
		return rules.OutcomeLose
	default:
		return rules.OutcomePush
	}
}

func (g *Game) dealToPlayer(idx int) {
	card := g.draw()
	g.hands[idx].Cards = append(g.hands[idx].Cards, card)
	g.record(StepDeal, idx, card.ID)
}

func (g *Game) dealToDealer() {
	card := g.draw()
	g.dealer = append(g.dealer, card)
	g.record(StepDeal, DealerHand, card.ID)
}

// draw panics with deck.ErrEmptyDeck when no cards are left.
func (g *Game) draw() deck.Instance {
	card, rest := deck.MustDraw(g.deck)
	g.deck = rest
	g.lastDealtID = card.ID
	g.highlightedID = card.ID
	return card
}
