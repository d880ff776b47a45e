package replay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Provider fetches a recorded game by id.
type Provider interface {
	FetchReplay(ctx context.Context, gameID int64) (*Loaded, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, gameID int64) (*Loaded, error)

func (f ProviderFunc) FetchReplay(ctx context.Context, gameID int64) (*Loaded, error) {
	return f(ctx, gameID)
}

// Loaded is a provider result: the replay plus how its owner sees the board.
type Loaded struct {
	GameID      int64
	Title       string
	Replay      *GameReplay
	Orientation Orientation
}

// State is the viewer lifecycle state.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrViewerClosed = errors.New("replay: viewer closed")
	ErrNilReplay    = errors.New("replay: provider returned no replay")
)

// Snapshot is a consistent read of a viewer.
type Snapshot struct {
	ID     string
	GameID int64
	Title  string
	State  State
	Err    error
	Frame  Frame
	Moves  []Move
	Replay *GameReplay
}

// ViewerOption customizes Open.
type ViewerOption func(*Viewer)

// WithFetchTimeout bounds the initial fetch.
func WithFetchTimeout(d time.Duration) ViewerOption {
	return func(v *Viewer) { v.fetchTimeout = d }
}

// WithOnChange installs a callback that runs, under the viewer lock, after
// the viewer becomes ready and after every cursor change.
func WithOnChange(fn func(Frame)) ViewerOption {
	return func(v *Viewer) { v.onChange = fn }
}

// Viewer owns one game view: a one-shot fetch followed by a navigator.
// Input is applied in arrival order; before the fetch completes, and after a
// failure or Close, input is ignored.
type Viewer struct {
	id     string
	gameID int64

	mu       sync.Mutex
	state    State
	err      error
	loaded   *Loaded
	nav      *Navigator
	dispatch *Dispatcher
	touched  time.Time

	fetchTimeout time.Duration
	onChange     func(Frame)
	cancel       context.CancelFunc
	done         chan struct{}
}

// Open starts fetching gameID in the background and returns a loading viewer.
// The fetch is cancelled by Close or by ctx.
func Open(ctx context.Context, provider Provider, gameID int64, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		id:      uuid.NewString(),
		gameID:  gameID,
		state:   StateLoading,
		touched: time.Now(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	var fetchCtx context.Context
	if v.fetchTimeout > 0 {
		fetchCtx, v.cancel = context.WithTimeout(ctx, v.fetchTimeout)
	} else {
		fetchCtx, v.cancel = context.WithCancel(ctx)
	}
	go func() {
		loaded, err := provider.FetchReplay(fetchCtx, gameID)
		v.finish(loaded, err)
	}()
	return v
}

func (v *Viewer) finish(loaded *Loaded, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer close(v.done)
	defer v.cancel()
	if v.state != StateLoading {
		// closed while the fetch was in flight
		return
	}
	if err == nil && (loaded == nil || loaded.Replay == nil) {
		err = ErrNilReplay
	}
	if err != nil {
		v.state = StateFailed
		v.err = err
		return
	}
	v.loaded = loaded
	v.nav = NewNavigator(loaded.Replay, loaded.Orientation)
	v.dispatch = NewDispatcher(v.nav)
	v.state = StateReady
	if v.onChange != nil {
		v.nav.OnChange(v.onChange)
		v.onChange(v.nav.Frame())
	}
}

func (v *Viewer) ID() string { return v.id }

func (v *Viewer) GameID() int64 { return v.gameID }

// Wait blocks until the viewer leaves the loading state and returns the load
// error, if any.
func (v *Viewer) Wait(ctx context.Context) error {
	select {
	case <-v.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	switch v.state {
	case StateFailed:
		return v.err
	case StateClosed:
		return ErrViewerClosed
	default:
		return nil
	}
}

// Close tears the view down and cancels a pending fetch. A fetch result that
// arrives afterwards is dropped.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateClosed {
		return
	}
	v.state = StateClosed
	v.nav = nil
	v.dispatch = nil
	v.cancel()
}

func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// LastActive is the time of the last accepted input or of Open.
func (v *Viewer) LastActive() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.touched
}

// Select applies selection input.
func (v *Viewer) Select(index int) bool {
	var changed bool
	v.withDispatcher(func(d *Dispatcher) { changed = d.Select(index) })
	return changed
}

// Do applies a sequential gesture.
func (v *Viewer) Do(action Action) bool {
	var changed bool
	v.withDispatcher(func(d *Dispatcher) { changed = d.Do(action) })
	return changed
}

// HandleKey applies a navigation key. Keys are only handled once ready.
func (v *Viewer) HandleKey(key string) (handled, changed bool) {
	v.withDispatcher(func(d *Dispatcher) { handled, changed = d.HandleKey(key) })
	return handled, changed
}

func (v *Viewer) withDispatcher(fn func(*Dispatcher)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateReady {
		return
	}
	v.touched = time.Now()
	fn(v.dispatch)
}

// Snapshot reads the whole view under one lock.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{ID: v.id, GameID: v.gameID, State: v.state, Err: v.err}
	if v.state == StateReady {
		s.Title = v.loaded.Title
		s.Frame = v.nav.Frame()
		s.Moves = v.nav.Moves()
		s.Replay = v.nav.Replay()
	}
	return s
}
