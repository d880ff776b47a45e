package replay

import (
	"sort"
	"strings"
)

// Action is a sequential navigation gesture.
type Action int

const (
	ActionNone Action = iota
	ActionStepBackward
	ActionStepForward
	ActionGoToStart
	ActionGoToEnd
)

func (a Action) String() string {
	switch a {
	case ActionStepBackward:
		return "step_backward"
	case ActionStepForward:
		return "step_forward"
	case ActionGoToStart:
		return "go_to_start"
	case ActionGoToEnd:
		return "go_to_end"
	default:
		return "none"
	}
}

// DefaultKeys maps the reserved navigation keys to their gestures.
var DefaultKeys = map[string]Action{
	"left":  ActionStepBackward,
	"right": ActionStepForward,
	"home":  ActionGoToStart,
	"end":   ActionGoToEnd,
}

// Dispatcher routes selection and sequential input to one Navigator. It holds
// the navigator itself, so every dispatch reads the cursor as it is now.
// Bounds are left entirely to the navigator.
type Dispatcher struct {
	nav *Navigator
}

func NewDispatcher(nav *Navigator) *Dispatcher {
	return &Dispatcher{nav: nav}
}

// KeysFor lists the reserved keys bound to action, sorted.
func KeysFor(action Action) []string {
	var keys []string
	for k, a := range DefaultKeys {
		if a == action {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Select handles selection input: a chosen list index.
func (d *Dispatcher) Select(index int) bool {
	return d.nav.GoTo(index)
}

// Do handles a sequential gesture.
func (d *Dispatcher) Do(action Action) bool {
	switch action {
	case ActionStepBackward:
		return d.nav.StepBackward()
	case ActionStepForward:
		return d.nav.StepForward()
	case ActionGoToStart:
		return d.nav.GoToStart()
	case ActionGoToEnd:
		return d.nav.GoToEnd()
	default:
		return false
	}
}

// ActionForKey looks up a key in the table.
func (d *Dispatcher) ActionForKey(key string) (Action, bool) {
	a, ok := DefaultKeys[strings.ToLower(strings.TrimSpace(key))]
	return a, ok
}

// HandleKey dispatches a navigation key. handled is true for every reserved
// key, boundary no-ops included, and tells the caller to swallow the key.
func (d *Dispatcher) HandleKey(key string) (handled, changed bool) {
	action, ok := d.ActionForKey(key)
	if !ok {
		return false, false
	}
	return true, d.Do(action)
}
