// Package input routes raw key events to per-role buffering state machines
// and assembles them into committed input records.
//
// # Architecture
//
//	                 ┌──────────────────────────────────────────────┐
//	 raw key event   │                 Event Router                 │
//	───────────────▶ │ correlate source ─▶ classify ─▶ dispatch     │
//	                 └──────────┬───────────────────────┬───────────┘
//	                            │ keyboard              │ scanner
//	                            ▼                       ▼
//	                 ┌────────────────────┐  ┌────────────────────┐
//	                 │   Buffer (role=    │  │   Buffer (role=    │
//	                 │     keyboard)      │  │     scanner)       │
//	                 │  Idle/Accumulating │  │  Idle/Accumulating │
//	                 └─────────┬──────────┘  └─────────┬──────────┘
//	                           │ key_press / input_complete
//	                           ▼
//	                    events.Dispatcher
//
// The router delivers each event to at most one role handler; isolation is
// structural, not filtered downstream. A scanner character can never reach
// the keyboard buffer because the dispatch switch admits exactly one role.
//
// Buffers coalesce keystrokes into records using a lazy 100ms idle window:
// the window is checked on the next keystroke, not by a background timer,
// so a record can stay open indefinitely until new input or Enter arrives.
// All routing and buffering runs on the single key-dispatch goroutine;
// Buffer and Router are not safe for concurrent use and do not lock.
package input
