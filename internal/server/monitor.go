package server

import (
	"github.com/lox/blackjack/internal/statistics"
)

// RoundMonitor receives notifications about sessions and settled rounds.
// Calls are made while the session holds its lock, so they must not block.
type RoundMonitor interface {
	// OnSessionStart is called when a client connects.
	OnSessionStart(sessionID string, seed int64)

	// OnSessionEnd is called after the client has gone.
	OnSessionEnd(sessionID string)

	// OnRoundComplete is called once per settled round.
	OnRoundComplete(outcome RoundOutcome)
}

// RoundOutcome is one settled round of one session
type RoundOutcome struct {
	SessionID string
	Balance   int
	Result    statistics.RoundResult
}

// NullRoundMonitor is a no-op implementation.
type NullRoundMonitor struct{}

func (NullRoundMonitor) OnSessionStart(string, int64) {}
func (NullRoundMonitor) OnSessionEnd(string)          {}
func (NullRoundMonitor) OnRoundComplete(RoundOutcome) {}

// MultiRoundMonitor fans events out to several monitors.
type MultiRoundMonitor struct {
	monitors []RoundMonitor
}

// NewMultiRoundMonitor drops nil monitors and returns a NullRoundMonitor
// when none are left.
func NewMultiRoundMonitor(monitors ...RoundMonitor) RoundMonitor {
	filtered := make([]RoundMonitor, 0, len(monitors))
	for _, monitor := range monitors {
		if monitor != nil {
			filtered = append(filtered, monitor)
		}
	}

	switch len(filtered) {
	case 0:
		return NullRoundMonitor{}
	case 1:
		return filtered[0]
	default:
		return MultiRoundMonitor{monitors: filtered}
	}
}

func (m MultiRoundMonitor) OnSessionStart(sessionID string, seed int64) {
	for _, monitor := range m.monitors {
		monitor.OnSessionStart(sessionID, seed)
	}
}

func (m MultiRoundMonitor) OnSessionEnd(sessionID string) {
	for _, monitor := range m.monitors {
		monitor.OnSessionEnd(sessionID)
	}
}

func (m MultiRoundMonitor) OnRoundComplete(outcome RoundOutcome) {
	for _, monitor := range m.monitors {
		monitor.OnRoundComplete(outcome)
	}
}
