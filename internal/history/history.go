// Package history runs commands and keeps the undo and redo stacks.
package history

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inamate/sketchboard/internal/command"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrCommandFailed = errors.New("command failed")
)

// DefaultLimit bounds the undo stack when no limit is configured.
const DefaultLimit = 500

// EventKind tells subscribers what happened.
type EventKind int

const (
	EventDo EventKind = iota
	EventUndo
	EventRedo
	// EventReset means the document was replaced and both stacks emptied.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventDo:
		return "do"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to subscribers after the stacks settle.
type Event struct {
	Kind        EventKind
	Description string
}

// Subscription identifies a subscriber.
type Subscription struct {
	id uuid.UUID
}

type entry struct {
	cmd command.Command
	at  time.Time
}

type subscriber struct {
	sub Subscription
	fn  func(Event)
}

// Manager owns the past and future stacks. Only Do, Undo, Redo and Clear
// touch them.
type Manager struct {
	mu     sync.Mutex
	past   []entry
	future []entry
	subs   []subscriber

	limit  int
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the number of undo entries; the oldest are dropped first.
// Values below 1 select DefaultLimit.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithLogger sets the logger for command failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates an empty manager.
func New(opts ...Option) *Manager {
	m := &Manager{limit: DefaultLimit, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do executes cmd and, on success, pushes it onto the undo stack and empties
// the redo stack. A failed command is logged and dropped: the stacks are left
// alone, subscribers are not notified and the document is not rolled back.
func (m *Manager) Do(cmd command.Command) error {
	if err := run(cmd.Execute); err != nil {
		m.logger.Error("command failed", "command", cmd.Description(), "error", err)
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd.Description(), err)
	}

	m.mu.Lock()
	m.past = append(m.past, entry{cmd: cmd, at: time.Now()})
	m.future = nil
	if excess := len(m.past) - m.limit; excess > 0 {
		m.past = m.past[excess:]
	}
	m.mu.Unlock()

	m.notify(Event{Kind: EventDo, Description: cmd.Description()})
	return nil
}

// Undo reverses the newest command. An Undo error puts the entry back.
func (m *Manager) Undo() error {
	m.mu.Lock()
	if len(m.past) == 0 {
		m.mu.Unlock()
		return ErrNothingToUndo
	}
	e := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.mu.Unlock()

	if err := run(e.cmd.Undo); err != nil {
		m.mu.Lock()
		m.past = append(m.past, e)
		m.mu.Unlock()
		m.logger.Error("undo failed", "command", e.cmd.Description(), "error", err)
		return fmt.Errorf("undo %s: %w", e.cmd.Description(), err)
	}

	m.mu.Lock()
	m.future = append(m.future, e)
	m.mu.Unlock()

	m.notify(Event{Kind: EventUndo, Description: e.cmd.Description()})
	return nil
}

// Redo reapplies the most recently undone command.
func (m *Manager) Redo() error {
	m.mu.Lock()
	if len(m.future) == 0 {
		m.mu.Unlock()
		return ErrNothingToRedo
	}
	e := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.mu.Unlock()

	if err := run(e.cmd.Redo); err != nil {
		m.mu.Lock()
		m.future = append(m.future, e)
		m.mu.Unlock()
		m.logger.Error("redo failed", "command", e.cmd.Description(), "error", err)
		return fmt.Errorf("redo %s: %w", e.cmd.Description(), err)
	}

	m.mu.Lock()
	m.past = append(m.past, e)
	m.mu.Unlock()

	m.notify(Event{Kind: EventRedo, Description: e.cmd.Description()})
	return nil
}

// Clear empties both stacks and notifies subscribers with EventReset.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.past = nil
	m.future = nil
	m.mu.Unlock()

	m.notify(Event{Kind: EventReset})
}

// CanUndo reports whether Undo has anything to do.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether Redo has anything to do.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// UndoCount returns the depth of the undo stack.
func (m *Manager) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past)
}

// RedoCount returns the depth of the redo stack.
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future)
}

// PeekUndo describes the command Undo would reverse.
func (m *Manager) PeekUndo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.past) == 0 {
		return "", false
	}
	return m.past[len(m.past)-1].cmd.Description(), true
}

// PeekRedo describes the command Redo would reapply.
func (m *Manager) PeekRedo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.future) == 0 {
		return "", false
	}
	return m.future[len(m.future)-1].cmd.Description(), true
}

// Subscribe registers fn to be called after every successful Do, Undo and
// Redo, and after Clear. Calls are synchronous and in subscription order.
func (m *Manager) Subscribe(fn func(Event)) Subscription {
	sub := Subscription{id: uuid.New()}
	m.mu.Lock()
	m.subs = append(m.subs, subscriber{sub: sub, fn: fn})
	m.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber. Unknown subscriptions are ignored.
func (m *Manager) Unsubscribe(sub Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.subs {
		if s.sub == sub {
			m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
			return
		}
	}
}

// notify calls each subscriber from a copy of the list, so subscribers may
// subscribe or unsubscribe while being notified.
func (m *Manager) notify(ev Event) {
	m.mu.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// run calls fn and turns a panic into an error.
func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
