package hostbridge

import (
	"encoding/json"

	"github.com/holox/posinput/internal/events"
	"github.com/holox/posinput/internal/infrastructure/mqtt"
)

// mirrorSubscriberName identifies the mirror on the event dispatcher.
const mirrorSubscriberName = "mqtt_mirror"

// Subscriber registers event handlers. Satisfied by *events.Dispatcher.
type Subscriber interface {
	Subscribe(name string, handler events.Handler)
	Unsubscribe(name string)
}

// Mirror republishes the consumer event stream to the broker, one topic
// per event type (posinput/event/input_complete and so on). Off-till
// consumers follow the stream without a WebSocket connection to the
// daemon.
//
// Publishing is best-effort: a failed publish is logged and the event is
// gone. The WebSocket stream stays authoritative for on-till consumers.
type Mirror struct {
	mqtt       MQTTClient
	dispatcher Subscriber
	logger     Logger
	qos        byte
	topics     mqtt.Topics
}

// NewMirror creates a mirror. Call Start to begin republishing.
func NewMirror(client MQTTClient, dispatcher Subscriber, qos byte) *Mirror {
	return &Mirror{
		mqtt:       client,
		dispatcher: dispatcher,
		logger:     noopLogger{},
		qos:        qos,
	}
}

// SetLogger sets the logger for the mirror.
func (m *Mirror) SetLogger(logger Logger) {
	m.logger = logger
}

// Start subscribes the mirror to the event stream.
func (m *Mirror) Start() {
	m.dispatcher.Subscribe(mirrorSubscriberName, m.handle)
}

// Stop unsubscribes the mirror. Events published before Stop returns may
// still be in flight at the broker.
func (m *Mirror) Stop() {
	m.dispatcher.Unsubscribe(mirrorSubscriberName)
}

// handle republishes one event to its type topic.
func (m *Mirror) handle(ev events.Event) {
	if !m.mqtt.IsConnected() {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		m.logger.Error("marshalling event for mirror failed",
			"event_type", ev.Type,
			"error", err,
		)
		return
	}

	topic := m.topics.Event(string(ev.Type))
	if err := m.mqtt.Publish(topic, payload, m.qos, false); err != nil {
		m.logger.Warn("mirroring event failed",
			"topic", topic,
			"error", err,
		)
	}
}
