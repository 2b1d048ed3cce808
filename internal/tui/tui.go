package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/rules"
)

// stepMsg asks the model to show the next pending step of the replay it
// was scheduled for
type stepMsg struct {
	replay int
}

// Model is the Bubble Tea model for a local blackjack table
type Model struct {
	game      *game.Game
	logger    *log.Logger
	dealDelay time.Duration

	logViewport viewport.Model
	gameLog     []string

	// shown lags the game while a transition is being replayed
	shown   game.Snapshot
	pending []game.Step
	replay  int

	width       int
	height      int
	initialized bool
	quitting    bool
}

// NewModel creates a TUI over g. Dealt cards appear dealDelay apart.
func NewModel(g *game.Game, logger *log.Logger, dealDelay time.Duration) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	return &Model{
		game:        g,
		logger:      logger.WithPrefix("tui"),
		dealDelay:   dealDelay,
		logViewport: vp,
		shown:       g.Snapshot(),
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		return m, nil

	case stepMsg:
		if msg.replay != m.replay {
			return m, nil
		}
		return m, m.showNext()

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return tea.Quit
	case "up", "k":
		m.logViewport.ScrollUp(1)
		return nil
	case "down", "j":
		m.logViewport.ScrollDown(1)
		return nil
	case "pgup":
		m.logViewport.HalfPageUp()
		return nil
	case "pgdown":
		m.logViewport.HalfPageDown()
		return nil
	case "r":
		m.pending = nil
		m.replay++
		return m.play(m.game.Reset(), nil)
	}

	if m.Replaying() {
		switch key {
		case "n", "h", "s", "d", "p", "+", "=", "-":
			m.AddLogEntry(InfoStyle.Render("Cards are still being dealt."))
		}
		return nil
	}

	switch key {
	case "n":
		return m.play(m.game.StartRound())
	case "h":
		return m.play(m.game.Hit())
	case "s":
		return m.play(m.game.Stand())
	case "d":
		return m.play(m.game.Double())
	case "p":
		return m.play(m.game.Split())
	case "+", "=":
		return m.play(m.game.SetBetAmount(float64(m.game.BetAmount()+rules.BetStep)), nil)
	case "-":
		return m.play(m.game.SetBetAmount(float64(m.game.BetAmount()-rules.BetStep)), nil)
	}
	return nil
}

// play queues a transition for replay, or logs why the action was refused
func (m *Model) play(t *game.Transition, err error) tea.Cmd {
	if err != nil {
		m.logger.Debug("Action rejected", "error", err)
		if errors.Is(err, game.ErrInsufficientFunds) {
			m.shown = m.game.Snapshot()
			m.AddLogEntry(ErrorStyle.Render(m.shown.Status))
		} else {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
		}
		return nil
	}

	m.pending = append(m.pending, t.Steps...)
	return m.showNext()
}

// showNext applies the next pending step to the display and schedules the
// one after it
func (m *Model) showNext() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	step := m.pending[0]
	m.pending = m.pending[1:]
	m.shown = step.State
	m.logStep(step)

	if len(m.pending) == 0 {
		return nil
	}
	msg := stepMsg{replay: m.replay}
	if next := m.pending[0]; next.Kind == game.StepDeal && m.dealDelay > 0 {
		return tea.Tick(m.dealDelay, func(time.Time) tea.Msg { return msg })
	}
	return func() tea.Msg { return msg }
}

// Replaying reports whether steps are still waiting to be shown
func (m *Model) Replaying() bool {
	return len(m.pending) > 0
}

// Shown returns the state currently on screen
func (m *Model) Shown() game.Snapshot {
	return m.shown
}

func (m *Model) logStep(step game.Step) {
	s := step.State
	switch step.Kind {
	case game.StepRoundStart:
		m.AddLogEntry(LabelStyle.Render(fmt.Sprintf("New round, bet $%d", s.BetAmount)))
	case game.StepDeal:
		card := findCard(s, step.CardID)
		if step.Hand == game.DealerHand {
			if !s.HoleRevealed && len(s.Dealer) == 2 && s.Dealer[1].ID == step.CardID {
				m.AddLogEntry("Dealer takes a card face down")
			} else {
				m.AddLogEntry("Dealer draws " + card.String())
			}
		} else {
			m.AddLogEntry(fmt.Sprintf("Hand %d draws %s", step.Hand+1, card))
		}
	case game.StepRevealHole:
		m.AddLogEntry("Dealer reveals " + findCard(s, step.CardID).String())
	case game.StepSettle:
		m.AddLogEntry(s.Status)
		for i, h := range s.Hands {
			m.AddLogEntry(fmt.Sprintf("  Hand %d: %s %s", i+1, h.Outcome, h.Result))
		}
		m.AddLogEntry(fmt.Sprintf("  Balance: $%d", s.Balance))
	case game.StepBet:
		m.AddLogEntry(fmt.Sprintf("Bet set to $%d", s.BetAmount))
	case game.StepDealerTurn, game.StepAwait:
		// status line already shows these
	default:
		m.AddLogEntry(s.Status)
	}
}

func findCard(s game.Snapshot, id string) deck.Card {
	for _, c := range s.Dealer {
		if c.ID == id {
			return c.Card
		}
	}
	for _, h := range s.Hands {
		for _, c := range h.Cards {
			if c.ID == id {
				return c.Card
			}
		}
	}
	return deck.Card{}
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the log entries written so far
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	table := m.renderTable()
	tableHeight := lipgloss.Height(table)

	logWidth := max(m.width-2, 1)
	logHeight := max(m.height-tableHeight-2, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	if !m.initialized {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight).
		Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, table, logPane)
}

func (m *Model) renderTable() string {
	s := m.shown.Public()
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Blackjack  Balance: $%d  Bet: $%d", s.Balance, s.BetAmount)))
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render("Dealer "))
	b.WriteString(formatCards(s.Dealer, s.Highlighted))
	if len(s.Dealer) > 0 {
		fmt.Fprintf(&b, "  (%d)", s.DealerTotal)
	}
	b.WriteString("\n\n")

	if len(s.Hands) == 0 {
		b.WriteString(InfoStyle.Render("No cards dealt"))
		b.WriteString("\n")
	}
	for i, h := range s.Hands {
		label := fmt.Sprintf("Hand %d ", i+1)
		if !s.RoundOver && i == s.ActiveHand {
			b.WriteString(ActiveHandStyle.Render("> " + label))
		} else {
			b.WriteString(LabelStyle.Render("  " + label))
		}
		b.WriteString(formatCards(h.Cards, s.Highlighted))

		total := fmt.Sprintf("%d", h.Total)
		if h.Soft && h.Total <= rules.BlackjackTarget {
			total = "soft " + total
		}
		fmt.Fprintf(&b, "  (%s)  $%d", total, h.Bet)
		if h.Doubled {
			b.WriteString(" doubled")
		}
		if h.Result != "" {
			b.WriteString("  ")
			b.WriteString(renderResult(h.Outcome, h.Result))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(WarningStyle.Render(s.Status))
	b.WriteString("\n")
	b.WriteString(m.renderKeys(s))
	return b.String()
}

func (m *Model) renderKeys(s game.Snapshot) string {
	var keys []string
	switch {
	case m.Replaying():
		keys = append(keys, "dealing...")
	case s.RoundOver:
		keys = append(keys, "[n]ew round", "[+/-] bet")
	default:
		keys = append(keys, "[h]it", "[s]tand")
		if s.CanDouble {
			keys = append(keys, "[d]ouble")
		}
		if s.CanSplit {
			keys = append(keys, "s[p]lit")
		}
	}
	keys = append(keys, "[r]eset", "[q]uit")
	return KeysStyle.Render(strings.Join(keys, "  "))
}

func renderResult(o rules.Outcome, result string) string {
	switch o {
	case rules.OutcomeWin, rules.OutcomeBlackjack:
		return SuccessStyle.Render(result)
	case rules.OutcomePush:
		return WarningStyle.Render(result)
	default:
		return ErrorStyle.Render(result)
	}
}

// formatCards renders cards with suit colours. A card without a rank is
// the dealer's face-down hole card.
func formatCards(cards []deck.Instance, highlighted string) string {
	if len(cards) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(cards))
	for _, c := range cards {
		var text string
		switch {
		case c.Rank == 0:
			text = HiddenCardStyle.Render("##")
		case c.IsRed():
			text = RedCardStyle.Render(c.String())
		default:
			text = BlackCardStyle.Render(c.String())
		}
		if c.ID != "" && c.ID == highlighted {
			text = HighlightStyle.Render(text)
		}
		formatted = append(formatted, text)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
