package input

// Action is the physical phase of a key event.
type Action string

// Key event actions. Only key-down drives the buffering state machine;
// key-up and auto-repeat are consumed without effect.
const (
	ActionDown   Action = "down"
	ActionUp     Action = "up"
	ActionRepeat Action = "repeat"
)

// Key identifies the non-printable keys the buffers act on. Printable
// input travels in KeyEvent.Char instead.
type Key string

// Special keys.
const (
	KeyNone        Key = ""
	KeyEnter       Key = "enter"
	KeyNumpadEnter Key = "numpad_enter"
	KeyBackspace   Key = "backspace"
)

// KeyEvent is one raw keystroke from the host input subsystem.
//
// SourceName is the input-source display name used for device correlation;
// it is the only identity the input subsystem exposes. Char is the decoded
// printable character, or zero for non-printable keys.
type KeyEvent struct {
	SourceName string `json:"sourceName"`
	Action     Action `json:"action"`
	Key        Key    `json:"key,omitempty"`
	Char       rune   `json:"char,omitempty"`
}

// isEnter reports whether the event is either Enter variant. Both commit
// the buffer identically; numpad Enter exists because numeric keypads and
// many scanners terminate with it.
func (e KeyEvent) isEnter() bool {
	return e.Key == KeyEnter || e.Key == KeyNumpadEnter
}

// isPrintable reports whether the event carries a printable character.
func (e KeyEvent) isPrintable() bool {
	return e.Key == KeyNone && e.Char != 0
}
