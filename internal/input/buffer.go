package input

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/holox/posinput/internal/events"
)

// DefaultTimeout is the idle window separating two input records. Scanner
// bursts arrive with sub-millisecond inter-key gaps; human typing rarely
// pauses under 100ms mid-entry, so the window cleanly splits the two.
const DefaultTimeout = 100 * time.Millisecond

// State is the buffering state machine state.
type State string

// Buffer states.
const (
	StateIdle         State = "idle"
	StateAccumulating State = "accumulating"
)

// Publisher delivers key notices and completed records to the consumer
// stream. Satisfied by *events.Dispatcher.
type Publisher interface {
	Publish(ev events.Event)
}

// Logger defines the logging interface used by the input package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Buffer assembles keystrokes for one role into committed input records.
//
// Per-character key_press notices are advisory, for live display; only the
// input_complete emitted on flush commits input. The idle window is
// evaluated lazily on the next key-down rather than by a timer goroutine,
// so no flush ever happens without a triggering keystroke.
//
// Buffer is driven from the single key-dispatch goroutine and is not safe
// for concurrent use.
type Buffer struct {
	role      events.Role
	timeout   time.Duration
	clock     clock.Clock
	publisher Publisher
	logger    Logger

	state   State
	buf     []rune
	lastKey time.Time
}

// NewBuffer creates an idle buffer for the given role. A timeout of zero
// selects DefaultTimeout.
func NewBuffer(role events.Role, publisher Publisher, timeout time.Duration) *Buffer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Buffer{
		role:      role,
		timeout:   timeout,
		clock:     clock.New(),
		publisher: publisher,
		logger:    noopLogger{},
		state:     StateIdle,
	}
}

// SetLogger sets the logger for the buffer.
func (b *Buffer) SetLogger(logger Logger) {
	b.logger = logger
}

// SetClock replaces the wall clock. Used by tests to drive the idle window
// deterministically.
func (b *Buffer) SetClock(c clock.Clock) {
	b.clock = c
}

// Role returns the role this buffer commits records for.
func (b *Buffer) Role() events.Role {
	return b.role
}

// State returns the current state machine state.
func (b *Buffer) State() State {
	return b.state
}

// HandleKey feeds one raw key event into the state machine and reports
// whether it was consumed. Key-up and auto-repeat are consumed without
// effect; every key-down is consumed, including keys the machine does not
// act on, because the router has already established the event belongs to
// this role's device.
func (b *Buffer) HandleKey(ev KeyEvent) bool {
	if ev.Action != ActionDown {
		return true
	}

	now := b.clock.Now()

	// Stale-flush check runs at the top of every key-down, not just for
	// printables: a buffer left open past the idle window is committed
	// before the new keystroke is interpreted, so a second scan (or an
	// Enter-less scanner) never merges into the previous record.
	if len(b.buf) > 0 && now.Sub(b.lastKey) > b.timeout {
		b.flush()
	}
	b.lastKey = now

	switch {
	case ev.isEnter():
		if len(b.buf) > 0 {
			b.flush()
		}
		b.state = StateIdle

	case ev.Key == KeyBackspace:
		if len(b.buf) > 0 {
			b.buf = b.buf[:len(b.buf)-1]
			b.notify(events.KeyPress{IsDelete: true, Role: b.role})
		}

	case ev.isPrintable():
		b.buf = append(b.buf, ev.Char)
		b.state = StateAccumulating
		b.notify(events.KeyPress{Char: string(ev.Char), Role: b.role})
	}

	return true
}

// Flush commits any pending input immediately. Called on shutdown so a
// half-typed entry is not silently lost.
func (b *Buffer) Flush() {
	if len(b.buf) > 0 {
		b.flush()
	}
	b.state = StateIdle
}

// Pending returns the number of uncommitted characters.
func (b *Buffer) Pending() int {
	return len(b.buf)
}

// flush emits the accumulated record and resets to Idle.
func (b *Buffer) flush() {
	data := string(b.buf)
	length := len(b.buf)

	b.buf = b.buf[:0]
	b.state = StateIdle

	b.logger.Debug("input record committed", "role", b.role, "length", length)

	if b.publisher != nil {
		b.publisher.Publish(events.New(events.TypeInputComplete, events.InputComplete{
			Data:   data,
			Length: length,
			Role:   b.role,
		}))
	}
}

// notify emits an advisory key_press event.
func (b *Buffer) notify(payload events.KeyPress) {
	if b.publisher != nil {
		b.publisher.Publish(events.New(events.TypeKeyPress, payload))
	}
}
