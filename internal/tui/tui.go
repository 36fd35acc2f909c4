// Package tui is the terminal client: a command line, a scrolling game log,
// and a state panel over one open character session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/inkquest/internal/game/session"
	"github.com/cory-johannsen/inkquest/internal/gameserver"
)

type model struct {
	ctx       context.Context
	exec      *Executor
	feed      *session.Feed
	turnDelay time.Duration

	textInput textinput.Model
	viewport  viewport.Model
	snapshot  *gameserver.Snapshot
	gameLog   []string
	width     int
	height    int
	quitting  bool
}

// resultMsg carries the outcome of one executed command line.
type resultMsg struct {
	res Result
	err error
}

// feedMsg is one line of combat narration.
type feedMsg struct {
	line string
}

// feedClosedMsg reports that the session feed was closed.
type feedClosedMsg struct{}

// NewModel builds the client model around an open session.
//
// Precondition: exec and feed must be non-nil.
func NewModel(ctx context.Context, exec *Executor, feed *session.Feed, turnDelay time.Duration, initial gameserver.Snapshot) tea.Model {
	if exec == nil || feed == nil {
		panic("tui: NewModel precondition violated")
	}
	ti := textinput.New()
	ti.Placeholder = "Type a command, or help..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 60

	name := "writer"
	if initial.Character != nil {
		name = initial.Character.Name
	}
	return model{
		ctx:       ctx,
		exec:      exec,
		feed:      feed,
		turnDelay: turnDelay,
		textInput: ti,
		viewport:  viewport.New(80, 20),
		snapshot:  &initial,
		gameLog: []string{
			gameStyle.Bold(true).Render(fmt.Sprintf("Welcome back, %s.", name)),
			helpStyle.Render("Type areas to pick a fight, write to log a session, or help for everything else."),
		},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForFeed(m.feed, m.turnDelay))
}

// waitForFeed blocks for the next narration line. The monster's counter-turn
// is held back by delay so each exchange reads as two beats.
func waitForFeed(feed *session.Feed, delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-feed.Events()
		if !ok {
			return feedClosedMsg{}
		}
		if delay > 0 && isCounterTurn(line) {
			time.Sleep(delay)
		}
		return feedMsg{line: line}
	}
}

func isCounterTurn(line string) bool {
	return strings.Contains(line, " attacks you for ")
}

func (m model) execute(line string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.exec.Execute(m.ctx, line)
		return resultMsg{res: res, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.textInput.Value())
			if line == "" {
				return m, nil
			}
			m.textInput.Reset()
			m.appendLog(userStyle.Width(m.logWidth()).Render("> " + line))
			return m, m.execute(line)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = max(msg.Height-6, 1)
		m.refreshLog()
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.appendLog(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		if msg.res.Snapshot != nil {
			m.snapshot = msg.res.Snapshot
		}
		for _, line := range msg.res.Lines {
			m.appendLog(gameStyle.Width(m.logWidth()).Render(line))
		}
		if msg.res.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case feedMsg:
		m.appendLog(combatStyle.Width(m.logWidth()).Render(msg.line))
		return m, waitForFeed(m.feed, m.turnDelay)

	case feedClosedMsg:
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.refreshLog()
}

func (m *model) refreshLog() {
	m.viewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	if m.width == 0 {
		return 80
	}
	return int(float64(m.width) * 0.75)
}

func (m model) View() string {
	if m.quitting {
		return "\n  Progress saved. Keep writing!\n"
	}
	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewport.View(),
		stateStyle.Render(renderSidebar(m.snapshot)),
	)
	help := helpStyle.Render("Commands: help, areas, enter <area>, attack, use <ability>, flee, write, store, quit.")
	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"\n"+m.textInput.View(),
		"\n"+help,
	) + "\n"
}

// Run starts the terminal client and blocks until the player quits or ctx
// is cancelled.
func Run(ctx context.Context, exec *Executor, feed *session.Feed, turnDelay time.Duration, initial gameserver.Snapshot) error {
	p := tea.NewProgram(NewModel(ctx, exec, feed, turnDelay, initial), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("running terminal client: %w", err)
	}
	return nil
}
