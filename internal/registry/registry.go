package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/holox/posinput/internal/events"
	"github.com/holox/posinput/internal/usb"
)

// PermissionState tracks where a device sits in the permission lifecycle.
type PermissionState string

// Permission states. Transitions only happen via explicit grant/deny
// notifications or a request being issued.
const (
	PermissionUnknown   PermissionState = "unknown"
	PermissionRequested PermissionState = "requested"
	PermissionGranted   PermissionState = "granted"
	PermissionDenied    PermissionState = "denied"
)

// Entry is one registered device: descriptor, cached classification and
// permission state. Entries are returned by value so callers can never
// mutate registry internals.
type Entry struct {
	Descriptor     usb.Descriptor           `json:"descriptor"`
	Classification usb.ClassificationResult `json:"classification"`
	Permission     PermissionState          `json:"permission"`
	LastSeen       time.Time                `json:"last_seen"`
}

// Prompter issues the asynchronous platform permission prompt. The call
// must be fire-and-forget: the result arrives later as a permission
// notification, never as a return value.
type Prompter interface {
	PromptPermission(desc usb.Descriptor) error
}

// Publisher delivers events to the consumer stream.
// Satisfied by *events.Dispatcher.
type Publisher interface {
	Publish(ev events.Event)
}

// Store persists device sightings and permission grants.
// Satisfied by *SQLiteStore. A nil store means memory-only operation.
type Store interface {
	RecordSighting(ctx context.Context, desc usb.Descriptor, event string, cls usb.ClassificationResult) error
	SavePermission(ctx context.Context, vendorID, productID uint16, granted bool) error
	GrantedPermissions(ctx context.Context) ([]PermissionGrant, error)
}

// PermissionGrant is one remembered (vendor, product) permission decision.
type PermissionGrant struct {
	VendorID  uint16
	ProductID uint16
	Granted   bool
}

// Logger defines the logging interface used by the Registry.
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

// RequestOutcome is the synchronous answer to a permission request.
// Granted is true only when permission was already held; an actual prompt
// is asynchronous and reported later on the event stream.
type RequestOutcome struct {
	Granted bool   `json:"granted"`
	Message string `json:"message"`
}

// Registry caches descriptor, classification and permission state for
// every sighted USB device.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	grants  map[uint32]bool // remembered (vendor,product) -> granted

	prompter  Prompter
	publisher Publisher
	store     Store
	logger    Logger
}

// NewRegistry creates an empty registry. The prompter and publisher may be
// nil; permission requests then fail with ErrNoPrompter and events are
// silently discarded.
func NewRegistry(prompter Prompter, publisher Publisher) *Registry {
	return &Registry{
		entries:  make(map[string]*Entry),
		grants:   make(map[uint32]bool),
		prompter: prompter,
		// publisher may be nil; emit() checks.
		publisher: publisher,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetStore attaches a persistence store. Call before RestoreGrants.
func (r *Registry) SetStore(store Store) {
	r.store = store
}

// RestoreGrants loads remembered permission grants from the store so
// re-attached devices come back Granted. No-op without a store.
func (r *Registry) RestoreGrants(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	grants, err := r.store.GrantedPermissions(ctx)
	if err != nil {
		return fmt.Errorf("loading permission grants: %w", err)
	}

	r.mu.Lock()
	for _, g := range grants {
		r.grants[grantKey(g.VendorID, g.ProductID)] = g.Granted
	}
	count := len(r.grants)
	r.mu.Unlock()

	r.logger.Info("permission grants restored", "count", count)
	return nil
}

// OnAttach registers a newly attached device (or replaces the entry on
// re-enumeration). Classification is computed exactly once here and
// cached; permission defaults to Unknown unless a remembered grant exists
// for the (vendor, product) pair.
func (r *Registry) OnAttach(ctx context.Context, desc usb.Descriptor) {
	cls := usb.Classify(desc)
	usb.LogDescriptor(r.logger, desc, cls)

	entry := &Entry{
		Descriptor:     desc,
		Classification: cls,
		Permission:     PermissionUnknown,
		LastSeen:       time.Now().UTC(),
	}

	r.mu.Lock()
	if granted, ok := r.grants[grantKey(desc.VendorID, desc.ProductID)]; ok && granted {
		entry.Permission = PermissionGranted
	}
	r.entries[desc.DeviceName] = entry
	r.mu.Unlock()

	r.logger.Info("device attached",
		"device_name", desc.DeviceName,
		"type", cls.Type,
		"confidence", cls.Confidence,
		"permission", entry.Permission,
	)

	r.recordSighting(ctx, desc, "attach", cls)

	// Only input-bearing devices are announced on the consumer stream;
	// printers and card readers have their own drivers.
	if cls.Type == usb.TypeScanner || cls.Type == usb.TypeKeyboard {
		r.emit(events.New(events.TypeDeviceAttached, presencePayload(desc, cls)))
	}
}

// OnDetach removes a device. Any in-flight permission request for it is
// discarded: a permission result arriving afterwards is a logged no-op.
func (r *Registry) OnDetach(ctx context.Context, deviceName string) {
	r.mu.Lock()
	entry, ok := r.entries[deviceName]
	delete(r.entries, deviceName)
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("detach for unregistered device", "device_name", deviceName)
		return
	}

	r.logger.Info("device detached", "device_name", deviceName, "type", entry.Classification.Type)

	r.recordSighting(ctx, entry.Descriptor, "detach", entry.Classification)

	if entry.Classification.Type == usb.TypeScanner || entry.Classification.Type == usb.TypeKeyboard {
		r.emit(events.New(events.TypeDeviceDetached, presencePayload(entry.Descriptor, entry.Classification)))
	}
}

// OnPermissionResult applies a grant/deny decision from the platform.
// Results for devices that detached before the prompt resolved are logged
// and dropped.
func (r *Registry) OnPermissionResult(ctx context.Context, deviceName string, granted bool) {
	r.mu.Lock()
	entry, ok := r.entries[deviceName]
	if ok {
		if granted {
			entry.Permission = PermissionGranted
		} else {
			entry.Permission = PermissionDenied
		}
		r.grants[grantKey(entry.Descriptor.VendorID, entry.Descriptor.ProductID)] = granted
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Warn("permission result for absent device (detached before response?)",
			"device_name", deviceName,
			"granted", granted,
		)
		return
	}

	r.logger.Info("permission result", "device_name", deviceName, "granted", granted)

	if r.store != nil {
		if err := r.store.SavePermission(ctx, entry.Descriptor.VendorID, entry.Descriptor.ProductID, granted); err != nil {
			r.logger.Warn("persisting permission grant failed", "device_name", deviceName, "error", err)
		}
	}

	message := "permission granted"
	if !granted {
		message = "permission denied"
	}
	r.emit(events.New(events.TypePermissionResult, events.PermissionResult{
		Granted:    granted,
		DeviceName: deviceName,
		Message:    message,
	}))
}

// RequestPermission asks the platform to prompt for access to a device.
//
// The returned outcome reflects only synchronously-known state: Granted is
// true when permission is already held. At most one request is in flight
// per device - a second call while a prompt is pending reports "pending"
// without issuing a duplicate prompt. The prompt itself is issued outside
// the registry lock and is fire-and-forget.
func (r *Registry) RequestPermission(_ context.Context, deviceName string) (RequestOutcome, error) {
	r.mu.Lock()
	entry, ok := r.entries[deviceName]
	if !ok {
		r.mu.Unlock()
		return RequestOutcome{}, ErrDeviceNotFound
	}

	switch entry.Permission {
	case PermissionGranted:
		r.mu.Unlock()
		return RequestOutcome{Granted: true, Message: "permission already granted"}, nil
	case PermissionRequested:
		r.mu.Unlock()
		return RequestOutcome{Granted: false, Message: "permission request pending"}, nil
	case PermissionUnknown, PermissionDenied:
		// A denied device may be re-requested; the operator may have
		// dismissed the prompt by mistake.
	}

	if r.prompter == nil {
		r.mu.Unlock()
		return RequestOutcome{}, ErrNoPrompter
	}

	entry.Permission = PermissionRequested
	desc := entry.Descriptor
	r.mu.Unlock()

	if err := r.prompter.PromptPermission(desc); err != nil {
		// Roll back so a later request can retry.
		r.mu.Lock()
		if e, stillThere := r.entries[deviceName]; stillThere && e.Permission == PermissionRequested {
			e.Permission = PermissionUnknown
		}
		r.mu.Unlock()
		return RequestOutcome{}, fmt.Errorf("%w: %w", ErrPromptFailed, err)
	}

	r.logger.Info("permission request issued", "device_name", deviceName)
	return RequestOutcome{Granted: false, Message: "permission request sent"}, nil
}

// HasPermission reports whether the device currently holds permission.
// Unknown devices report false.
func (r *Registry) HasPermission(deviceName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[deviceName]
	return ok && entry.Permission == PermissionGranted
}

// Query returns the entry for a device name, or ErrDeviceNotFound.
func (r *Registry) Query(deviceName string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[deviceName]
	if !ok {
		return Entry{}, ErrDeviceNotFound
	}
	return *entry, nil
}

// Snapshot returns all entries ordered by device name.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, *entry)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Descriptor.DeviceName < out[j].Descriptor.DeviceName
	})
	return out
}

// FirstKeyboard returns the first registered keyboard-classified entry in
// device-name order, matching the "current keyboard" the API reports.
func (r *Registry) FirstKeyboard() (Entry, bool) {
	for _, entry := range r.Snapshot() {
		if entry.Classification.Type == usb.TypeKeyboard {
			return entry, true
		}
	}
	return Entry{}, false
}

// Stats summarises registry contents for monitoring.
type Stats struct {
	TotalDevices int                    `json:"total_devices"`
	ByType       map[usb.DeviceType]int `json:"by_type"`
	Granted      int                    `json:"granted"`
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		TotalDevices: len(r.entries),
		ByType:       make(map[usb.DeviceType]int),
	}
	for _, entry := range r.entries {
		stats.ByType[entry.Classification.Type]++
		if entry.Permission == PermissionGranted {
			stats.Granted++
		}
	}
	return stats
}

// DeviceCount returns the number of registered devices.
func (r *Registry) DeviceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close clears all entries. Pending permission requests are discarded;
// their results, if they ever arrive, become logged no-ops.
func (r *Registry) Close() {
	r.mu.Lock()
	count := len(r.entries)
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	r.logger.Info("registry closed", "discarded_entries", count)
}

// recordSighting persists an attach/detach sighting, best-effort.
func (r *Registry) recordSighting(ctx context.Context, desc usb.Descriptor, event string, cls usb.ClassificationResult) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordSighting(ctx, desc, event, cls); err != nil {
		r.logger.Warn("recording device sighting failed",
			"device_name", desc.DeviceName,
			"event", event,
			"error", err,
		)
	}
}

// emit publishes an event if a publisher is configured.
func (r *Registry) emit(ev events.Event) {
	if r.publisher != nil {
		r.publisher.Publish(ev)
	}
}

// presencePayload builds the attach/detach event payload.
func presencePayload(desc usb.Descriptor, cls usb.ClassificationResult) events.DevicePresence {
	return events.DevicePresence{
		DeviceName:   desc.DeviceName,
		VendorID:     desc.VendorID,
		ProductID:    desc.ProductID,
		ProductName:  desc.ProductName,
		DeviceType:   cls.Type,
		KeyboardKind: usb.KeyboardKindOf(desc),
	}
}

// grantKey packs a (vendor, product) pair into one map key.
func grantKey(vendorID, productID uint16) uint32 {
	return uint32(vendorID)<<16 | uint32(productID)
}
