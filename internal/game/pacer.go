package game

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
)

const (
	// DefaultDealDelay is the pause before each dealt card is shown
	DefaultDealDelay = 350 * time.Millisecond
	// DefaultAnimationTimeout bounds the wait for a card's animation to finish
	DefaultAnimationTimeout = 600 * time.Millisecond
)

// Pacer replays a Transition at presentation speed. State is already final
// when the Pacer runs; it only decides when each step is shown. A step that
// moves a card waits for Ack with that card's ID or for the animation
// timeout, whichever comes first.
type Pacer struct {
	clock            quartz.Clock
	dealDelay        time.Duration
	animationTimeout time.Duration

	mu      sync.Mutex
	waiting string
	acks    chan string
}

// NewPacer creates a pacer on clock. Zero durations use the defaults.
func NewPacer(clock quartz.Clock, dealDelay, animationTimeout time.Duration) *Pacer {
	if dealDelay <= 0 {
		dealDelay = DefaultDealDelay
	}
	if animationTimeout <= 0 {
		animationTimeout = DefaultAnimationTimeout
	}
	return &Pacer{
		clock:            clock,
		dealDelay:        dealDelay,
		animationTimeout: animationTimeout,
		acks:             make(chan string, 1),
	}
}

// Play emits each step of t in order. Card steps are preceded by the deal
// delay and followed by the animation wait. It returns early only if ctx is
// cancelled or emit fails.
func (p *Pacer) Play(ctx context.Context, t *Transition, emit func(Step) error) error {
	for _, step := range t.Steps {
		if step.CardID != "" && step.Kind == StepDeal {
			if err := p.sleep(ctx, p.dealDelay); err != nil {
				return err
			}
		}
		if step.CardID == "" {
			if err := emit(step); err != nil {
				return err
			}
			continue
		}
		// the ack may arrive before emit returns, so listen first
		p.expect(step.CardID)
		err := emit(step)
		if err == nil {
			err = p.awaitCard(ctx, step.CardID)
		}
		p.expect("")
		if err != nil {
			return err
		}
	}
	return nil
}

// Ack signals that the animation for cardID has finished. Acks for cards
// the pacer is not waiting on are dropped.
func (p *Pacer) Ack(cardID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cardID == "" || p.waiting != cardID {
		return
	}
	select {
	case p.acks <- cardID:
	default:
	}
}

// expect sets the card whose ack is awaited and discards any ack left over
// from an earlier card.
func (p *Pacer) expect(cardID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiting = cardID
	select {
	case <-p.acks:
	default:
	}
}

func (p *Pacer) awaitCard(ctx context.Context, cardID string) error {
	select {
	case id := <-p.acks:
		if id == cardID {
			return nil
		}
	default:
	}

	timeout := make(chan struct{})
	timer := p.clock.AfterFunc(p.animationTimeout, func() {
		close(timeout)
	}, "pacer", "animation")
	defer timer.Stop()

	for {
		select {
		case id := <-p.acks:
			if id == cardID {
				return nil
			}
		case <-timeout:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pacer) sleep(ctx context.Context, d time.Duration) error {
	done := make(chan struct{})
	timer := p.clock.AfterFunc(d, func() {
		close(done)
	}, "pacer", "deal")
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
