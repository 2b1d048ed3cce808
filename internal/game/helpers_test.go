package game

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/require"
)

// stackedGame returns a game whose every round deals cards in the given
// order: player, dealer, player, dealer, then hits and dealer draws.
func stackedGame(t *testing.T, cards string, opts ...Option) *Game {
	t.Helper()
	top := deck.MustParseCards(cards)
	opts = append([]Option{WithDeckSource(func() []deck.Instance {
		return deck.Stacked(top)
	})}, opts...)
	return New(randutil.New(1), opts...)
}

// startWithBet sets the bet and starts a round, failing the test on error
func startWithBet(t *testing.T, g *Game, bet int) *Transition {
	t.Helper()
	g.SetBetAmount(float64(bet))
	tr, err := g.StartRound()
	require.NoError(t, err)
	return tr
}

func outcomes(g *Game) []rules.Outcome {
	var out []rules.Outcome
	for _, h := range g.Hands() {
		out = append(out, h.Outcome)
	}
	return out
}

func kinds(tr *Transition) []StepKind {
	out := make([]StepKind, len(tr.Steps))
	for i, s := range tr.Steps {
		out[i] = s.Kind
	}
	return out
}
