package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		net     int
		ok      bool
		label   string
	}{
		{OutcomeBlackjack, 100, true, "Won $100"},
		{OutcomeWin, 50, true, "Won $50"},
		{OutcomePush, 0, true, "Push ($0)"},
		{OutcomeBust, -50, true, "Lost $50"},
		{OutcomeLose, -50, true, "Lost $50"},
		{OutcomeNone, 0, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			net, ok := NetResult(tt.outcome, 50)
			assert.Equal(t, tt.net, net)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.label, FormatNet(net, ok))
		})
	}
}

// Settlement credits and display net results must agree on the balance delta.
func TestCreditMatchesNetResult(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{OutcomeBlackjack, OutcomeWin, OutcomePush, OutcomeBust, OutcomeLose} {
		for _, bet := range []int{10, 25, 50, 100} {
			net, ok := NetResult(o, bet)
			assert.True(t, ok)
			assert.Equal(t, net, Credit(o, bet)-bet, "%s bet=%d", o, bet)
		}
	}
	assert.Zero(t, Credit(OutcomeNone, 50))
}

func TestOutcomeIsFinal(t *testing.T) {
	t.Parallel()

	assert.True(t, OutcomeBust.IsFinal())
	assert.True(t, OutcomeBlackjack.IsFinal())
	assert.True(t, OutcomeLose.IsFinal())
	assert.False(t, OutcomeWin.IsFinal())
	assert.False(t, OutcomePush.IsFinal())
	assert.False(t, OutcomeNone.IsFinal())
}
