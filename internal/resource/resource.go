// ABOUTME: Generic fetch / mutate-then-refetch synchronizer for view data
// ABOUTME: Only the latest activation may commit; mutations always re-read server state

package resource

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTimeout bounds each fetch and mutation
const DefaultTimeout = 15 * time.Second

// Fetcher loads the resource identified by key
type Fetcher[K comparable, T any] func(ctx context.Context, key K) (T, error)

// State is what a view renders.
// MutationErr is the view-local error of the last failed mutation; Data is kept.
type State[T any] struct {
	Loading     bool
	Err         string
	Data        *T
	Submitting  bool
	MutationErr string
}

// Fetched is produced by an activation's command
type Fetched[K comparable, T any] struct {
	owner uint64
	gen   uint64
	Key   K
	Data  T
	Err   error
}

// Mutated is produced by a mutation's command. Result is whatever the
// mutation returned, e.g. a created project.
type Mutated struct {
	owner  uint64
	Result any
	Err    error
}

type options struct {
	timeout time.Duration
	message func(error) string
}

// Option configures a Synchronizer
type Option func(*options)

// WithTimeout sets the per-activation and per-mutation timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMessage maps errors to the text shown to the user
func WithMessage(fn func(error) string) Option {
	return func(o *options) {
		if fn != nil {
			o.message = fn
		}
	}
}

var ids atomic.Uint64

// Synchronizer tracks one view's resource. It is not safe for concurrent use;
// bubbletea calls it from Update only, and commands report back through messages.
type Synchronizer[K comparable, T any] struct {
	id     uint64
	fetch  Fetcher[K, T]
	opts   options
	key    K
	hasKey bool
	gen    uint64
	cancel context.CancelFunc
	state  State[T]
}

// New creates an idle Synchronizer
func New[K comparable, T any](fetch Fetcher[K, T], opts ...Option) *Synchronizer[K, T] {
	o := options{
		timeout: DefaultTimeout,
		message: func(err error) string { return err.Error() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Synchronizer[K, T]{
		id:    ids.Add(1),
		fetch: fetch,
		opts:  o,
	}
}

// State returns the current view state
func (s *Synchronizer[K, T]) State() State[T] {
	return s.state
}

// Key returns the key of the latest activation
func (s *Synchronizer[K, T]) Key() (K, bool) {
	return s.key, s.hasKey
}

// Activate starts a fetch for key and supersedes any earlier activation.
// Switching to a different key drops the old data; re-activating the same
// key keeps it visible while loading.
func (s *Synchronizer[K, T]) Activate(key K) tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}
	if s.hasKey && s.key != key {
		s.state.Data = nil
	}
	s.key = key
	s.hasKey = true
	s.gen++
	s.state.Loading = true
	s.state.Err = ""
	s.state.MutationErr = ""

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.timeout)
	s.cancel = cancel
	owner, gen, fetch := s.id, s.gen, s.fetch

	return func() tea.Msg {
		defer cancel()
		data, err := fetch(ctx, key)
		return Fetched[K, T]{owner: owner, gen: gen, Key: key, Data: data, Err: err}
	}
}

// Refresh re-activates the current key. It returns nil before the first activation.
func (s *Synchronizer[K, T]) Refresh() tea.Cmd {
	if !s.hasKey {
		return nil
	}
	return s.Activate(s.key)
}

// Apply commits msg if it belongs to the latest activation and reports
// whether it did. Superseded results are dropped without touching state.
func (s *Synchronizer[K, T]) Apply(msg Fetched[K, T]) bool {
	if msg.owner != s.id || msg.gen != s.gen {
		return false
	}
	s.cancel = nil
	s.state.Loading = false
	if msg.Err != nil {
		s.state.Err = s.opts.message(msg.Err)
		return true
	}
	data := msg.Data
	s.state.Data = &data
	return true
}

// Mutate runs fn and reports the outcome as a Mutated message
func (s *Synchronizer[K, T]) Mutate(fn func(ctx context.Context) (any, error)) tea.Cmd {
	s.state.Submitting = true
	s.state.MutationErr = ""
	owner, timeout := s.id, s.opts.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := fn(ctx)
		return Mutated{owner: owner, Result: result, Err: err}
	}
}

// ApplyMutation handles a finished mutation. Success returns a fresh
// activation of the current key; failure records MutationErr, keeps Data and
// returns nil so the user may retry. Messages of other synchronizers are ignored.
func (s *Synchronizer[K, T]) ApplyMutation(msg Mutated) tea.Cmd {
	if msg.owner != s.id {
		return nil
	}
	s.state.Submitting = false
	if msg.Err != nil {
		s.state.MutationErr = s.opts.message(msg.Err)
		return nil
	}
	return s.Refresh()
}

// Owns reports whether msg was produced by this synchronizer
func (s *Synchronizer[K, T]) Owns(msg Mutated) bool {
	return msg.owner == s.id
}

// Load activates key and waits for the result. Used outside the TUI.
func (s *Synchronizer[K, T]) Load(key K) State[T] {
	msg := s.Activate(key)()
	s.Apply(msg.(Fetched[K, T]))
	return s.state
}

// Submit runs a mutation and its follow-up fetch synchronously.
// The mutation's error, if any, is returned alongside the state.
func (s *Synchronizer[K, T]) Submit(fn func(ctx context.Context) (any, error)) (State[T], Mutated) {
	msg := s.Mutate(fn)().(Mutated)
	if next := s.ApplyMutation(msg); next != nil {
		s.Apply(next().(Fetched[K, T]))
	}
	return s.state, msg
}
