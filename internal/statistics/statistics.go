package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/rules"
)

// RoundResult is the outcome of one blackjack round for the player
type RoundResult struct {
	Net      int             // Balance change over the round
	Wagered  int             // Total staked, including doubles and splits
	Seed     int64           // Seed of the game the round belongs to
	Outcomes []rules.Outcome // One per player hand
	Nets     []int           // Net result per player hand
	Doubled  int             // Hands that doubled
	Split    bool            // Whether the round split at least once
}

// ResultFromHands builds the result of a settled round from its player
// hands. More than one hand means the round was split.
func ResultFromHands(seed int64, hands []game.HandRecord) (RoundResult, error) {
	result := RoundResult{Seed: seed, Split: len(hands) > 1}
	for i, h := range hands {
		net, ok := rules.NetResult(h.Outcome, h.Bet)
		if !ok {
			return RoundResult{}, fmt.Errorf("hand %d settled without an outcome", i)
		}
		result.Outcomes = append(result.Outcomes, h.Outcome)
		result.Nets = append(result.Nets, net)
		result.Net += net
		result.Wagered += h.Bet
		if h.Doubled {
			result.Doubled++
		}
	}
	return result, nil
}

// Statistics aggregates round results
type Statistics struct {
	Rounds  int
	Hands   int
	SumNet  float64
	SumNet2 float64 // Sum of squares for variance calculation
	Values  []float64

	Wagered  int
	Doubles  int
	Splits   int
	Outcomes map[rules.Outcome]int

	// OutcomeNet splits AllNet by hand outcome; the two must agree
	OutcomeNet map[rules.Outcome]int
	AllNet     int
}

// Mean returns the mean net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of round results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of round results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// PlayerEdge returns the net result as a fraction of everything wagered.
// It is negative when the house is ahead.
func (s *Statistics) PlayerEdge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return float64(s.AllNet) / float64(s.Wagered)
}

// Add incorporates a round result
func (s *Statistics) Add(result RoundResult) {
	if s.Outcomes == nil {
		s.Outcomes = make(map[rules.Outcome]int)
		s.OutcomeNet = make(map[rules.Outcome]int)
	}

	net := float64(result.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.AllNet += result.Net
	s.Wagered += result.Wagered
	s.Doubles += result.Doubled
	if result.Split {
		s.Splits++
	}

	for i, o := range result.Outcomes {
		s.Hands++
		s.Outcomes[o]++
		if i < len(result.Nets) {
			s.OutcomeNet[o] += result.Nets[i]
		}
	}
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	if s.Outcomes == nil {
		s.Outcomes = make(map[rules.Outcome]int)
		s.OutcomeNet = make(map[rules.Outcome]int)
	}
	s.Rounds += other.Rounds
	s.Hands += other.Hands
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wagered += other.Wagered
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.AllNet += other.AllNet
	for o, n := range other.Outcomes {
		s.Outcomes[o] += n
	}
	for o, n := range other.OutcomeNet {
		s.OutcomeNet[o] += n
	}
}

// Median returns the median round result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the round result at p (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that per-outcome nets add up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	sum := 0
	for _, n := range s.OutcomeNet {
		sum += n
	}
	return sum == s.AllNet
}

// Validate checks the statistics for internal consistency
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllNet=%d, outcome nets=%v", s.AllNet, s.OutcomeNet)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)", len(s.Values), s.Rounds)
	}

	hands := 0
	for _, n := range s.Outcomes {
		hands += n
	}
	if hands != s.Hands {
		return fmt.Errorf("outcome total (%d) does not match hands count (%d)", hands, s.Hands)
	}
	if n := s.Outcomes[rules.OutcomeNone]; n > 0 {
		return fmt.Errorf("%d hands finished without an outcome", n)
	}
	if s.Hands < s.Rounds {
		return fmt.Errorf("hands (%d) fewer than rounds (%d)", s.Hands, s.Rounds)
	}
	return nil
}
