package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Policy picks the next player action for g's active hand
type Policy func(g *game.Game) (*game.Transition, error)

// HitBelow17 hits until the active hand reaches the dealer's stand threshold
func HitBelow17(g *game.Game) (*game.Transition, error) {
	if g.PlayerTotals()[g.ActiveHand()] < rules.DealerStandThreshold {
		return g.Hit()
	}
	return g.Stand()
}

// Basic splits aces and eights, doubles on 10 or 11 against a weak dealer up
// card and otherwise plays HitBelow17
func Basic(g *game.Game) (*game.Transition, error) {
	snap := g.Snapshot().Public()
	hand, ok := snap.Active()
	if !ok {
		return nil, game.ErrInvalidAction
	}
	up := snap.Dealer[0].Value()

	if g.CanSplit() {
		if r := hand.Cards[0].Rank; r == deck.Ace || r == deck.Eight {
			return g.Split()
		}
	}
	if g.CanDouble() && (hand.Total == 10 || hand.Total == 11) && up < 10 {
		return g.Double()
	}
	return HitBelow17(g)
}

// Policies maps policy names to implementations
var Policies = map[string]Policy{
	"simple": HitBelow17,
	"basic":  Basic,
}

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Rounds  int
	Bet     int
	Workers int
	Seed    int64
	Policy  Policy
	Logger  *log.Logger
}

// Simulator plays many independent games and aggregates their rounds
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Bet == 0 {
		config.Bet = rules.MinBet
	}
	if config.Policy == nil {
		config.Policy = HitBelow17
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays every game and returns the merged statistics. Each game's final
// balance is checked against its starting balance plus the sum of its hand
// results.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Games <= 0 || s.config.Rounds <= 0 {
		return nil, fmt.Errorf("games and rounds must be positive: %d x %d", s.config.Games, s.config.Rounds)
	}

	results := make([]*statistics.Statistics, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := range s.config.Games {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats, err := s.playGame(ctx, seed)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i, seed, err)
			}
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, r := range results {
		total.Merge(r)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return total, nil
}

// playGame plays up to Rounds rounds, stopping early if the balance cannot
// cover the bet
func (s *Simulator) playGame(ctx context.Context, seed int64) (*statistics.Statistics, error) {
	logger := s.config.Logger.With("seed", seed)
	g := game.New(randutil.New(seed), game.WithLogger(logger))
	g.SetBetAmount(float64(s.config.Bet))
	start := g.Balance()

	stats := &statistics.Statistics{}
	for round := 0; round < s.config.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.Balance() < g.BetAmount() {
			logger.Debug("Out of funds", "round", round, "balance", g.Balance())
			break
		}

		result, err := s.playRound(g, seed)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		stats.Add(result)
	}

	if stats.Rounds > 0 && g.Balance() != start+stats.AllNet {
		return nil, fmt.Errorf("balance %d does not match %d%+d", g.Balance(), start, stats.AllNet)
	}
	return stats, nil
}

func (s *Simulator) playRound(g *game.Game, seed int64) (statistics.RoundResult, error) {
	before := g.Balance()
	if _, err := g.StartRound(); err != nil {
		return statistics.RoundResult{}, err
	}

	for !g.RoundOver() {
		if _, err := s.config.Policy(g); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	result, err := statistics.ResultFromHands(seed, g.Hands())
	if err != nil {
		return statistics.RoundResult{}, err
	}

	if g.Balance() != before+result.Net {
		return statistics.RoundResult{}, fmt.Errorf("balance %d after round, expected %d", g.Balance(), before+result.Net)
	}
	return result, nil
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, policy string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS (%s policy) ===\n", policy)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	fmt.Fprintf(w, "Hands played: %d (%d splits, %d doubles)\n", stats.Hands, stats.Splits, stats.Doubles)
	fmt.Fprintf(w, "Total wagered: $%d\n", stats.Wagered)
	fmt.Fprintf(w, "Net result: $%d\n", stats.AllNet)
	fmt.Fprintf(w, "Player edge: %.3f%%\n", stats.PlayerEdge()*100)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f $/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f $/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] $/round\n", low, high)

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	outcomes := make([]rules.Outcome, 0, len(stats.Outcomes))
	for o := range stats.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })
	for _, o := range outcomes {
		n := stats.Outcomes[o]
		fmt.Fprintf(w, "%-10s %6d hands (%5.1f%%)  net $%d\n",
			o, n, float64(n)/float64(stats.Hands)*100, stats.OutcomeNet[o])
	}
}
