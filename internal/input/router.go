package input

import (
	"errors"

	"github.com/holox/posinput/internal/events"
	"github.com/holox/posinput/internal/registry"
	"github.com/holox/posinput/internal/usb"
)

// Handler consumes key events for one role. Satisfied by *Buffer.
type Handler interface {
	HandleKey(ev KeyEvent) bool
}

// Router delivers each raw key event to at most one role handler.
//
// Dispatch is decided purely by the source device's classification:
// keyboards feed the keyboard handler, scanners the scanner handler, and
// everything else (printers, card readers, unknowns, non-USB sources)
// falls through unrouted so the host's default handling applies.
type Router struct {
	correlator *registry.Correlator
	registry   *registry.Registry
	handlers   map[events.Role]Handler
	logger     Logger
}

// NewRouter creates a router with no handlers attached. Events route
// nowhere until SetHandler is called for each role.
func NewRouter(correlator *registry.Correlator, reg *registry.Registry) *Router {
	return &Router{
		correlator: correlator,
		registry:   reg,
		handlers:   make(map[events.Role]Handler),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the router.
func (r *Router) SetLogger(logger Logger) {
	r.logger = logger
}

// SetHandler attaches the handler for a role. Call before dispatch starts;
// handlers are not swapped while events are in flight.
func (r *Router) SetHandler(role events.Role, h Handler) {
	r.handlers[role] = h
}

// Route resolves the event's source device and dispatches to the matching
// role handler. Returns true iff a handler consumed the event; false means
// the caller should fall back to default host handling.
func (r *Router) Route(ev KeyEvent) bool {
	desc, err := r.correlator.Resolve(ev.SourceName)
	if err != nil {
		// No match means a non-USB source (built-in keyboard etc.), which
		// is a normal pass-through, not a failure.
		if !errors.Is(err, registry.ErrNoMatch) {
			r.logger.Warn("input source resolution failed", "source", ev.SourceName, "error", err)
		}
		return false
	}

	// Prefer the cached classification; a device that produced input
	// before its attach notification landed is classified fresh.
	cls := r.classify(desc)

	var role events.Role
	switch cls.Type {
	case usb.TypeKeyboard:
		role = events.RoleKeyboard
	case usb.TypeScanner:
		role = events.RoleScanner
	default:
		return false
	}

	handler, ok := r.handlers[role]
	if !ok {
		r.logger.Debug("no handler for role", "role", role, "source", ev.SourceName)
		return false
	}

	return handler.HandleKey(ev)
}

func (r *Router) classify(desc usb.Descriptor) usb.ClassificationResult {
	if entry, err := r.registry.Query(desc.DeviceName); err == nil {
		return entry.Classification
	}
	return usb.Classify(desc)
}
