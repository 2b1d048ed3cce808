// Package rules holds the fixed blackjack table rules: hand valuation,
// bet normalization and payouts. Everything here is a pure function.
package rules

const (
	StartingBalance = 1000

	MinBet  = 10
	MaxBet  = 50
	BetStep = 5

	BlackjackTarget      = 21
	DealerStandThreshold = 17
	BlackjackHandLength  = 2
	AceAdjustment        = 10

	// Blackjack nets 2x the bet; with the stake returned the player is
	// credited 3x.
	BlackjackPayoutMultiplier = 2
	BlackjackTotalPayout      = 3
	WinTotalPayout            = 2
)
