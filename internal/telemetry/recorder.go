// Package telemetry feeds the consumer event stream into the time-series
// store. Only counts, lengths and classifications are recorded; record
// content never leaves the daemon.
package telemetry

import (
	"github.com/holox/posinput/internal/events"
)

// subscriberName identifies the recorder on the event dispatcher.
const subscriberName = "telemetry"

// Writer is the metric sink. Satisfied by *influxdb.Client.
type Writer interface {
	WriteInputRecord(stationID string, role string, length int)
	WriteDevicePresence(stationID string, deviceType string, event string)
	WritePermissionResult(stationID string, granted bool)
}

// Subscriber registers event handlers. Satisfied by *events.Dispatcher.
type Subscriber interface {
	Subscribe(name string, handler events.Handler)
	Unsubscribe(name string)
}

// Recorder translates consumer events into metric writes.
type Recorder struct {
	stationID  string
	writer     Writer
	dispatcher Subscriber
}

// NewRecorder creates a recorder for one station. Call Start to begin
// consuming events.
func NewRecorder(stationID string, writer Writer, dispatcher Subscriber) *Recorder {
	return &Recorder{
		stationID:  stationID,
		writer:     writer,
		dispatcher: dispatcher,
	}
}

// Start subscribes the recorder to the event stream.
func (r *Recorder) Start() {
	r.dispatcher.Subscribe(subscriberName, r.handle)
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	r.dispatcher.Unsubscribe(subscriberName)
}

// handle maps one event to its metric write. Key press notices are
// deliberately skipped: per-character points would be high-volume and
// low-value next to the committed record counts.
func (r *Recorder) handle(ev events.Event) {
	switch ev.Type {
	case events.TypeInputComplete:
		if p, ok := ev.Payload.(events.InputComplete); ok {
			r.writer.WriteInputRecord(r.stationID, string(p.Role), p.Length)
		}

	case events.TypeDeviceAttached:
		if p, ok := ev.Payload.(events.DevicePresence); ok {
			r.writer.WriteDevicePresence(r.stationID, string(p.DeviceType), "attach")
		}

	case events.TypeDeviceDetached:
		if p, ok := ev.Payload.(events.DevicePresence); ok {
			r.writer.WriteDevicePresence(r.stationID, string(p.DeviceType), "detach")
		}

	case events.TypePermissionResult:
		if p, ok := ev.Payload.(events.PermissionResult); ok {
			r.writer.WritePermissionResult(r.stationID, p.Granted)
		}

	case events.TypeKeyPress:
		// Skipped, see above.
	}
}
