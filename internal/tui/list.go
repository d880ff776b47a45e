package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/park285/cheese-review-bot/internal/replay"
)

var _ list.Item = moveItem{}

// moveItem is one row of the move list. Row 0 is the starting position, row
// i is half-move i, so cursor = row - 1.
type moveItem struct {
	cursor int
	label  string
	san    string
}

func (i moveItem) FilterValue() string { return i.san }

func (i moveItem) text() string {
	if i.cursor == replay.StartCursor {
		return "Start position"
	}
	return fmt.Sprintf("%-5s %s", i.label, i.san)
}

func moveItems(moves []replay.Move) []list.Item {
	items := make([]list.Item, 0, len(moves)+1)
	items = append(items, moveItem{cursor: replay.StartCursor})
	for i, mv := range moves {
		items = append(items, moveItem{cursor: i, label: mv.Label(), san: mv.Algebraic})
	}
	return items
}

// moveDelegate marks the row on display with an arrow and the row under the
// list selection in reverse video.
type moveDelegate struct {
	active func() int
}

func (d moveDelegate) Height() int                             { return 1 }
func (d moveDelegate) Spacing() int                            { return 0 }
func (d moveDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d moveDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(moveItem)
	if !ok {
		return
	}
	marker := "  "
	style := styles.entry
	if d.active != nil && it.cursor == d.active() {
		marker = "▶ "
		style = styles.active
	}
	line := style.Render(marker + it.text())
	if index == m.Index() {
		line = styles.selected.Render(marker + it.text())
	}
	fmt.Fprint(w, line)
}
