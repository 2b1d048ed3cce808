package rules

import "math"

// NormalizeBet clamps a requested wager into [MinBet, MaxBet] and rounds it
// to the nearest BetStep. Rounding can step past a bound, so the result is
// clamped again. NaN and infinities give MinBet.
func NormalizeBet(amount float64) int {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return MinBet
	}
	clamped := clamp(amount)
	stepped := math.Round(clamped/BetStep) * BetStep
	return int(clamp(stepped))
}

func clamp(v float64) float64 {
	return math.Max(MinBet, math.Min(MaxBet, v))
}
