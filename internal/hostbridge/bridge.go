package hostbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/holox/posinput/internal/infrastructure/mqtt"
	"github.com/holox/posinput/internal/input"
	"github.com/holox/posinput/internal/usb"
)

// keyQueueSize bounds the raw key queue between the MQTT handler
// goroutines and the single dispatch goroutine. A scanner bursts tens of
// keys per scan; 1024 absorbs several scans arriving while dispatch is
// momentarily busy.
const keyQueueSize = 1024

// MQTTClient is the interface for MQTT operations.
// Satisfied by *mqtt.Client; allows mocking in tests.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// DeviceRegistry is the registry surface the bridge drives.
// Satisfied by *registry.Registry.
type DeviceRegistry interface {
	OnAttach(ctx context.Context, desc usb.Descriptor)
	OnDetach(ctx context.Context, deviceName string)
	OnPermissionResult(ctx context.Context, deviceName string, granted bool)
}

// Router consumes dequeued key events.
// Satisfied by *input.Router.
type Router interface {
	Route(ev input.KeyEvent) bool
}

// Logger defines the logging interface used by the bridge.
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

// ErrNotConnected is returned when a prompt is requested while the broker
// connection is down.
var ErrNotConnected = errors.New("hostbridge: mqtt not connected")

// Bridge subscribes to host agent notifications and feeds them into the
// registry and the key dispatch pipeline. It also implements
// registry.Prompter by publishing prompt requests back to the agent.
//
// Thread safety: Start and Stop are not safe to call concurrently with
// each other; everything else is handler-driven.
type Bridge struct {
	mqtt     MQTTClient
	registry DeviceRegistry
	router   Router
	logger   Logger

	qos    byte
	topics mqtt.Topics

	keyCh chan input.KeyEvent

	ctx       context.Context
	ctxCancel context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	// droppedKeys counts key events discarded because the queue was full.
	droppedKeys int64
	dropMu      sync.Mutex
}

// New creates a bridge. Call Start to subscribe and begin dispatching.
func New(client MQTTClient, reg DeviceRegistry, router Router, qos byte) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		mqtt:      client,
		registry:  reg,
		router:    router,
		logger:    noopLogger{},
		qos:       qos,
		keyCh:     make(chan input.KeyEvent, keyQueueSize),
		ctx:       ctx,
		ctxCancel: cancel,
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// Start subscribes to all host topics and launches the key dispatch
// goroutine.
func (b *Bridge) Start() error {
	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{b.topics.HostAttach(), b.handleAttach},
		{b.topics.HostDetach(), b.handleDetach},
		{b.topics.HostPermission(), b.handlePermission},
		{b.topics.HostKey(), b.handleKey},
	}
	for _, s := range subs {
		if err := b.mqtt.Subscribe(s.topic, b.qos, s.handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", s.topic, err)
		}
	}

	b.wg.Add(1)
	go b.dispatchLoop()

	b.logger.Info("host bridge started", "key_queue", keyQueueSize)
	return nil
}

// Stop halts the dispatch goroutine. Queued key events that have not been
// dispatched yet are discarded.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.ctxCancel()
		b.wg.Wait()
		b.logger.Info("host bridge stopped", "dropped_keys", b.DroppedKeys())
	})
}

// PromptPermission publishes a permission prompt request to the host
// agent. Fire-and-forget: the outcome arrives later on the permission
// topic. Implements registry.Prompter.
func (b *Bridge) PromptPermission(desc usb.Descriptor) error {
	if !b.mqtt.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(PermissionRequestMessage{
		DeviceName:  desc.DeviceName,
		VendorID:    desc.VendorID,
		ProductID:   desc.ProductID,
		ProductName: desc.ProductName,
	})
	if err != nil {
		return fmt.Errorf("encoding permission request: %w", err)
	}

	if err := b.mqtt.Publish(b.topics.HostPermissionRequest(), payload, b.qos, false); err != nil {
		return fmt.Errorf("publishing permission request: %w", err)
	}

	b.logger.Debug("permission prompt published", "device_name", desc.DeviceName)
	return nil
}

// DroppedKeys returns the number of key events discarded due to a full
// queue.
func (b *Bridge) DroppedKeys() int64 {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	return b.droppedKeys
}

func (b *Bridge) handleAttach(topic string, payload []byte) error {
	var msg AttachMessage
	if err := decode(topic, payload, &msg); err != nil {
		return err
	}
	if msg.DeviceName == "" {
		return fmt.Errorf("attach message missing deviceName")
	}

	b.registry.OnAttach(b.ctx, msg.Descriptor())
	return nil
}

func (b *Bridge) handleDetach(topic string, payload []byte) error {
	var msg DetachMessage
	if err := decode(topic, payload, &msg); err != nil {
		return err
	}
	if msg.DeviceName == "" {
		return fmt.Errorf("detach message missing deviceName")
	}

	b.registry.OnDetach(b.ctx, msg.DeviceName)
	return nil
}

func (b *Bridge) handlePermission(topic string, payload []byte) error {
	var msg PermissionResultMessage
	if err := decode(topic, payload, &msg); err != nil {
		return err
	}
	if msg.DeviceName == "" {
		return fmt.Errorf("permission message missing deviceName")
	}

	b.registry.OnPermissionResult(b.ctx, msg.DeviceName, msg.Granted)
	return nil
}

// handleKey enqueues the keystroke for the dispatch goroutine. Enqueueing
// never blocks: a full queue drops the event, since stalling the MQTT
// handler would back up every host topic.
func (b *Bridge) handleKey(topic string, payload []byte) error {
	var msg KeyMessage
	if err := decode(topic, payload, &msg); err != nil {
		return err
	}

	select {
	case b.keyCh <- msg.KeyEvent():
	default:
		b.dropMu.Lock()
		b.droppedKeys++
		dropped := b.droppedKeys
		b.dropMu.Unlock()
		b.logger.Warn("key queue full, event dropped",
			"source", msg.SourceName,
			"total_dropped", dropped,
		)
	}
	return nil
}

// dispatchLoop is the single goroutine that feeds the router, preserving
// per-role ordering and keeping buffers single-threaded.
func (b *Bridge) dispatchLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case ev := <-b.keyCh:
			if !b.router.Route(ev) {
				b.logger.Debug("key event unrouted", "source", ev.SourceName)
			}
		}
	}
}
