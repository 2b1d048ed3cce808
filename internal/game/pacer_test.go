package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardTransition() *Transition {
	return &Transition{
		Action: ActionStand,
		Steps: []Step{
			{Kind: StepDealerTurn, Hand: DealerHand},
			{Kind: StepRevealHole, Hand: DealerHand, CardID: "card-hole"},
			{Kind: StepDeal, Hand: DealerHand, CardID: "card-draw"},
			{Kind: StepSettle, Hand: DealerHand},
		},
	}
}

// runPlay starts Play in the background and returns a channel with its result
func runPlay(ctx context.Context, p *Pacer, tr *Transition, emit func(Step) error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- p.Play(ctx, tr, emit)
	}()
	return done
}

// advanceUntilDone fires the mock clock's next timer until Play finishes
func advanceUntilDone(ctx context.Context, t *testing.T, mClock *quartz.Mock, done <-chan error) error {
	t.Helper()
	for {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			t.Fatal("pacer did not finish")
			return nil
		default:
		}
		if d, ok := mClock.Peek(); ok {
			mClock.Advance(d).MustWait(ctx)
			continue
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPacerTimesOutWithoutAcks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	start := mClock.Now()
	p := NewPacer(mClock, 0, 0)

	var (
		emitted []StepKind
		at      []time.Duration
	)
	done := runPlay(ctx, p, cardTransition(), func(s Step) error {
		emitted = append(emitted, s.Kind)
		at = append(at, mClock.Since(start))
		return nil
	})

	require.NoError(t, advanceUntilDone(ctx, t, mClock, done))

	assert.Equal(t, []StepKind{StepDealerTurn, StepRevealHole, StepDeal, StepSettle}, emitted)
	assert.Equal(t, []time.Duration{
		0,
		0,
		DefaultAnimationTimeout + DefaultDealDelay,
		2*DefaultAnimationTimeout + DefaultDealDelay,
	}, at)
}

func TestPacerAckEndsWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	start := mClock.Now()
	p := NewPacer(mClock, 10*time.Millisecond, time.Hour)

	tr := &Transition{Steps: []Step{
		{Kind: StepRevealHole, Hand: DealerHand, CardID: "card-hole"},
		{Kind: StepSettle, Hand: DealerHand},
	}}
	done := runPlay(ctx, p, tr, func(Step) error { return nil })

	// acks for other cards do not release the wait
	assert.Never(t, func() bool {
		p.Ack("card-other")
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	var err error
	require.Eventually(t, func() bool {
		p.Ack("card-hole")
		select {
		case err = <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), mClock.Since(start), "finished on the ack, not the timeout")
}

func TestPacerAcceptsAckDuringEmit(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	start := mClock.Now()
	p := NewPacer(mClock, 10*time.Millisecond, time.Hour)

	var emitted []StepKind
	done := runPlay(ctx, p, cardTransition(), func(s Step) error {
		emitted = append(emitted, s.Kind)
		if s.CardID != "" {
			// a repeated ack must not leak into the next card's wait
			p.Ack(s.CardID)
			p.Ack(s.CardID)
		}
		return nil
	})

	require.NoError(t, advanceUntilDone(ctx, t, mClock, done))
	assert.Equal(t, []StepKind{StepDealerTurn, StepRevealHole, StepDeal, StepSettle}, emitted)
	assert.Equal(t, 10*time.Millisecond, mClock.Since(start), "only the deal delay elapsed")
}

func TestPacerIgnoresLateAckFromTimedOutCard(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	start := mClock.Now()
	p := NewPacer(mClock, 10*time.Millisecond, 100*time.Millisecond)

	done := runPlay(ctx, p, cardTransition(), func(s Step) error {
		if s.Kind == StepDeal {
			p.Ack("card-hole")
			p.Ack(s.CardID)
		}
		return nil
	})

	require.NoError(t, advanceUntilDone(ctx, t, mClock, done))
	// the hole card waited out its timeout, the drawn card finished on its ack
	assert.Equal(t, 110*time.Millisecond, mClock.Since(start))
}

func TestPacerStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPacer(quartz.NewMock(t), time.Hour, time.Hour)

	emitted := 0
	done := runPlay(ctx, p, cardTransition(), func(Step) error {
		emitted++
		return nil
	})
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("pacer ignored cancellation")
	}
	assert.Less(t, emitted, len(cardTransition().Steps))
}

func TestPacerReturnsEmitError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection closed")
	p := NewPacer(quartz.NewMock(t), 0, 0)

	tr := &Transition{Steps: []Step{{Kind: StepBet}, {Kind: StepBet}}}
	calls := 0
	err := p.Play(context.Background(), tr, func(Step) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestPacerPlaysInstantStepsImmediately(t *testing.T) {
	t.Parallel()

	p := NewPacer(quartz.NewMock(t), 0, 0)
	g := stackedGame(t, "")

	var got []Step
	err := p.Play(context.Background(), g.SetBetAmount(25), func(s Step) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 25, got[0].State.BetAmount)
}
