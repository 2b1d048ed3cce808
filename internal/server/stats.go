package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/statistics"
)

// StatsMonitor aggregates settled rounds across all sessions
type StatsMonitor struct {
	mu       sync.RWMutex
	logger   *log.Logger
	total    statistics.Statistics
	sessions map[string]*sessionStats
}

type sessionStats struct {
	seed    int64
	balance int
	active  bool
	stats   statistics.Statistics
}

// StatsSummary is the JSON body served on /stats
type StatsSummary struct {
	Rounds     int            `json:"rounds"`
	Hands      int            `json:"hands"`
	Wagered    int            `json:"wagered"`
	Net        int            `json:"net"`
	Mean       float64        `json:"mean"`
	StdDev     float64        `json:"stdDev"`
	PlayerEdge float64        `json:"playerEdge"`
	Doubles    int            `json:"doubles"`
	Splits     int            `json:"splits"`
	Outcomes   map[string]int `json:"outcomes"`
	Sessions   []SessionStats `json:"sessions"`
}

// SessionStats summarises one session
type SessionStats struct {
	SessionID string `json:"sessionId"`
	Seed      int64  `json:"seed"`
	Active    bool   `json:"active"`
	Balance   int    `json:"balance"`
	Rounds    int    `json:"rounds"`
	Net       int    `json:"net"`
}

// NewStatsMonitor creates an empty monitor
func NewStatsMonitor(logger *log.Logger) *StatsMonitor {
	return &StatsMonitor{
		logger:   logger.WithPrefix("stats"),
		sessions: make(map[string]*sessionStats),
	}
}

func (m *StatsMonitor) OnSessionStart(sessionID string, seed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &sessionStats{seed: seed, active: true}
}

func (m *StatsMonitor) OnSessionEnd(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		s.active = false
	}
}

func (m *StatsMonitor) OnRoundComplete(outcome RoundOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total.Add(outcome.Result)
	s, ok := m.sessions[outcome.SessionID]
	if !ok {
		s = &sessionStats{seed: outcome.Result.Seed, active: true}
		m.sessions[outcome.SessionID] = s
	}
	s.balance = outcome.Balance
	s.stats.Add(outcome.Result)

	m.logger.Debug("Round recorded", "session", outcome.SessionID, "net", outcome.Result.Net, "rounds", m.total.Rounds)
}

// Summary returns a snapshot of the aggregated statistics
func (m *StatsMonitor) Summary() StatsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := StatsSummary{
		Rounds:     m.total.Rounds,
		Hands:      m.total.Hands,
		Wagered:    m.total.Wagered,
		Net:        m.total.AllNet,
		Mean:       m.total.Mean(),
		StdDev:     m.total.StdDev(),
		PlayerEdge: m.total.PlayerEdge(),
		Doubles:    m.total.Doubles,
		Splits:     m.total.Splits,
		Outcomes:   make(map[string]int, len(m.total.Outcomes)),
		Sessions:   make([]SessionStats, 0, len(m.sessions)),
	}
	for o, n := range m.total.Outcomes {
		summary.Outcomes[o.String()] = n
	}
	for id, s := range m.sessions {
		summary.Sessions = append(summary.Sessions, SessionStats{
			SessionID: id,
			Seed:      s.seed,
			Active:    s.active,
			Balance:   s.balance,
			Rounds:    s.stats.Rounds,
			Net:       s.stats.AllNet,
		})
	}
	sort.Slice(summary.Sessions, func(i, j int) bool {
		return summary.Sessions[i].SessionID < summary.Sessions[j].SessionID
	})
	return summary
}

// ServeHTTP writes the summary as JSON
func (m *StatsMonitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.Summary()); err != nil {
		m.logger.Error("Failed to encode stats", "error", err)
	}
}
