// Package tui is the terminal game viewer: a lipgloss board next to a
// selectable move list, driven by a replay.Viewer.
//
// Left, Right, Home and End go to the viewer's dispatcher and are consumed
// there; everything else is offered to the move list. Enter on a list row is
// selection input for that row.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/service/review"
)

type loadedMsg struct{ err error }

// Model is the bubbletea model for one open game.
type Model struct {
	ctx     context.Context
	viewer  *replay.Viewer
	snap    replay.Snapshot
	loadErr error

	moves   list.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	logger  *zap.Logger
}

// New wraps an opened viewer. The caller owns the viewer and closes it after
// the program exits.
func New(ctx context.Context, viewer *replay.Viewer, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:     ctx,
		viewer:  viewer,
		snap:    viewer.Snapshot(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
		logger:  logger,
	}
	m.moves = list.New(nil, moveDelegate{active: m.cursor}, 30, 14)
	m.moves.Title = "Moves"
	m.moves.SetShowStatusBar(false)
	m.moves.SetFilteringEnabled(false)
	m.moves.SetShowHelp(false)
	m.moves.DisableQuitKeybindings()
	return m
}

func (m *Model) cursor() int { return m.snap.Frame.Cursor }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitLoaded())
}

func (m *Model) waitLoaded() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.viewer.Wait(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.moves.SetSize(max(24, msg.Width-44), max(6, msg.Height-8))
		return m, nil

	case loadedMsg:
		m.snap = m.viewer.Snapshot()
		if msg.err != nil {
			m.loadErr = msg.err
			m.logger.Warn("review_open_failed", zap.Int64("game_id", m.viewer.GameID()), zap.Error(msg.err))
			return m, nil
		}
		m.moves.SetItems(moveItems(m.snap.Moves))
		m.moves.Select(m.cursor() + 1)
		m.logger.Info("review_open", zap.Int64("game_id", m.snap.GameID), zap.Int("plies", len(m.snap.Moves)))
		return m, nil

	case spinner.TickMsg:
		if m.snap.State != replay.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.snap.State != replay.StateReady {
		return m, nil
	}

	if handled, changed := m.viewer.HandleKey(msg.String()); handled {
		if changed {
			m.sync()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.choose) {
		if it, ok := m.moves.SelectedItem().(moveItem); ok && m.viewer.Select(it.cursor) {
			m.sync()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.moves, cmd = m.moves.Update(msg)
	return m, cmd
}

// sync re-reads the viewer and moves the list selection onto the displayed
// row.
func (m *Model) sync() {
	m.snap = m.viewer.Snapshot()
	m.moves.Select(m.cursor() + 1)
	m.logger.Debug("review_nav", zap.Int64("game_id", m.snap.GameID), zap.Int("cursor", m.cursor()))
}

func (m *Model) View() string {
	switch {
	case m.loadErr != nil:
		return m.failedView()
	case m.snap.State == replay.StateLoading:
		return fmt.Sprintf("%s Loading game #%d…\n\n%s", m.spinner.View(), m.viewer.GameID(), m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	case m.snap.State != replay.StateReady:
		return m.failedView()
	}

	frame := m.snap.Frame
	board, err := renderBoard(frame.Position, frame.Orientation)
	if err != nil {
		board = styles.err.Render(err.Error())
	}
	left := board + "\n\n" + styles.status.Render(statusLine(frame))
	if code, name := review.OpeningAt(m.snap.Replay, frame.Cursor); code != "" {
		left += "\n" + styles.muted.Render(code+" "+name)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, styles.panel.Render(m.moves.View()))
	return styles.title.Render(m.snap.Title) + "\n\n" + body + "\n\n" + m.help.View(m.keys)
}

func (m *Model) failedView() string {
	reason := "the game is unavailable"
	if m.loadErr != nil {
		reason = m.loadErr.Error()
	}
	return strings.Join([]string{
		styles.err.Render("Could not load this game"),
		styles.muted.Render(reason),
		"",
		m.help.ShortHelpView([]key.Binding{m.keys.quit}),
	}, "\n")
}

func statusLine(f replay.Frame) string {
	side := "White"
	if f.Orientation == replay.BlackPerspective {
		side = "Black"
	}
	if f.LastMove == nil {
		return fmt.Sprintf("Start position • 0/%d • viewing as %s", f.Total, side)
	}
	return fmt.Sprintf("%s %s • %d/%d • viewing as %s", f.LastMove.Label(), f.LastMove.Algebraic, f.Cursor+1, f.Total, side)
}
