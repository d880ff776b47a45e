package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/park285/cheese-review-bot/internal/replay"
)

// keyMap lists every binding the viewer shows in its help line. The
// navigation bindings take their keys from replay.DefaultKeys, which is also
// the table the viewer dispatches with.
type keyMap struct {
	prev   key.Binding
	next   key.Binding
	start  key.Binding
	end    key.Binding
	up     key.Binding
	down   key.Binding
	choose key.Binding
	help   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		prev:   navBinding(replay.ActionStepBackward, "←", "previous move"),
		next:   navBinding(replay.ActionStepForward, "→", "next move"),
		start:  navBinding(replay.ActionGoToStart, "home", "start"),
		end:    navBinding(replay.ActionGoToEnd, "end", "final position"),
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show move")),
		help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func navBinding(action replay.Action, label, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(replay.KeysFor(action)...), key.WithHelp(label, desc))
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.choose, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.start, k.end},
		{k.up, k.down, k.choose},
		{k.help, k.quit},
	}
}
