package hostbridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holox/posinput/internal/infrastructure/mqtt"
	"github.com/holox/posinput/internal/input"
	"github.com/holox/posinput/internal/usb"
)

// mockMQTT records subscriptions and publishes, and lets tests inject
// messages into registered handlers.
type mockMQTT struct {
	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published []publishedMsg
	connected bool
}

type publishedMsg struct {
	topic   string
	payload []byte
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{
		handlers:  make(map[string]mqtt.MessageHandler),
		connected: true,
	}
}

func (m *mockMQTT) Publish(topic string, payload []byte, _ byte, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMsg{topic: topic, payload: payload})
	return nil
}

func (m *mockMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// deliver injects a message as if the broker delivered it.
func (m *mockMQTT) deliver(t *testing.T, topic string, payload string) error {
	t.Helper()
	m.mu.Lock()
	handler, ok := m.handlers[topic]
	m.mu.Unlock()
	if !ok {
		t.Fatalf("no handler subscribed for %s", topic)
	}
	return handler(topic, []byte(payload))
}

// mockRegistry records registry calls.
type mockRegistry struct {
	mu       sync.Mutex
	attached []usb.Descriptor
	detached []string
	results  []permissionCall
}

type permissionCall struct {
	deviceName string
	granted    bool
}

func (m *mockRegistry) OnAttach(_ context.Context, desc usb.Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = append(m.attached, desc)
}

func (m *mockRegistry) OnDetach(_ context.Context, deviceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detached = append(m.detached, deviceName)
}

func (m *mockRegistry) OnPermissionResult(_ context.Context, deviceName string, granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, permissionCall{deviceName, granted})
}

// mockRouter records routed key events.
type mockRouter struct {
	mu     sync.Mutex
	routed []input.KeyEvent
}

func (m *mockRouter) Route(ev input.KeyEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routed = append(m.routed, ev)
	return true
}

func (m *mockRouter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.routed)
}

func startedBridge(t *testing.T) (*Bridge, *mockMQTT, *mockRegistry, *mockRouter) {
	t.Helper()

	client := newMockMQTT()
	reg := &mockRegistry{}
	router := &mockRouter{}

	b := New(client, reg, router, 1)
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(b.Stop)

	return b, client, reg, router
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBridge_SubscribesAllHostTopics(t *testing.T) {
	_, client, _, _ := startedBridge(t)

	topics := mqtt.Topics{}
	for _, topic := range []string{
		topics.HostAttach(),
		topics.HostDetach(),
		topics.HostPermission(),
		topics.HostKey(),
	} {
		client.mu.Lock()
		_, ok := client.handlers[topic]
		client.mu.Unlock()
		if !ok {
			t.Errorf("expected subscription to %s", topic)
		}
	}
}

func TestBridge_AttachMessage(t *testing.T) {
	_, client, reg, _ := startedBridge(t)

	payload := `{
		"deviceName": "/dev/usb1",
		"vendorId": 3118,
		"productId": 2817,
		"productName": "Voyager 1250g",
		"interfaces": [{"class": 3, "subclass": 1, "protocol": 1}]
	}`
	if err := client.deliver(t, mqtt.Topics{}.HostAttach(), payload); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.attached) != 1 {
		t.Fatalf("expected 1 attach, got %d", len(reg.attached))
	}
	desc := reg.attached[0]
	if desc.DeviceName != "/dev/usb1" || desc.VendorID != 0x0c2e {
		t.Errorf("unexpected descriptor %+v", desc)
	}
	if len(desc.Interfaces) != 1 || desc.Interfaces[0].Class != usb.ClassHID {
		t.Errorf("unexpected interfaces %+v", desc.Interfaces)
	}
}

func TestBridge_AttachMessage_MissingDeviceName(t *testing.T) {
	_, client, reg, _ := startedBridge(t)

	err := client.deliver(t, mqtt.Topics{}.HostAttach(), `{"vendorId": 3118}`)
	if err == nil {
		t.Error("expected error for missing deviceName")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.attached) != 0 {
		t.Error("malformed attach must not reach the registry")
	}
}

func TestBridge_AttachMessage_MalformedJSON(t *testing.T) {
	_, client, reg, _ := startedBridge(t)

	if err := client.deliver(t, mqtt.Topics{}.HostAttach(), `{not json`); err == nil {
		t.Error("expected decode error")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.attached) != 0 {
		t.Error("malformed attach must not reach the registry")
	}
}

func TestBridge_DetachMessage(t *testing.T) {
	_, client, reg, _ := startedBridge(t)

	if err := client.deliver(t, mqtt.Topics{}.HostDetach(), `{"deviceName": "/dev/usb1"}`); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.detached) != 1 || reg.detached[0] != "/dev/usb1" {
		t.Errorf("unexpected detaches %v", reg.detached)
	}
}

func TestBridge_PermissionMessage(t *testing.T) {
	_, client, reg, _ := startedBridge(t)

	if err := client.deliver(t, mqtt.Topics{}.HostPermission(),
		`{"deviceName": "/dev/usb1", "granted": true}`); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.results) != 1 {
		t.Fatalf("expected 1 permission result, got %d", len(reg.results))
	}
	if reg.results[0].deviceName != "/dev/usb1" || !reg.results[0].granted {
		t.Errorf("unexpected result %+v", reg.results[0])
	}
}

func TestBridge_KeyMessagesDispatchInOrder(t *testing.T) {
	_, client, _, router := startedBridge(t)

	for _, char := range []string{"4", "2", "9"} {
		payload := `{"sourceName": "Honeywell Voyager", "action": "down", "char": "` + char + `"}`
		if err := client.deliver(t, mqtt.Topics{}.HostKey(), payload); err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}
	payload := `{"sourceName": "Honeywell Voyager", "action": "down", "key": "enter"}`
	if err := client.deliver(t, mqtt.Topics{}.HostKey(), payload); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	waitFor(t, func() bool { return router.count() == 4 })

	router.mu.Lock()
	defer router.mu.Unlock()
	want := "429"
	for i, r := range router.routed[:3] {
		if r.Char != rune(want[i]) {
			t.Errorf("event %d: char %q, want %q", i, r.Char, want[i])
		}
		if r.Action != input.ActionDown {
			t.Errorf("event %d: action %s, want down", i, r.Action)
		}
	}
	if router.routed[3].Key != input.KeyEnter {
		t.Errorf("final event key %q, want enter", router.routed[3].Key)
	}
}

func TestBridge_PromptPermission(t *testing.T) {
	b, client, _, _ := startedBridge(t)

	desc := usb.Descriptor{
		VendorID:    0x0c2e,
		ProductID:   0x0b01,
		DeviceName:  "/dev/usb1",
		ProductName: "Voyager 1250g",
	}
	if err := b.PromptPermission(desc); err != nil {
		t.Fatalf("PromptPermission: %v", err)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(client.published))
	}
	if want := (mqtt.Topics{}).HostPermissionRequest(); client.published[0].topic != want {
		t.Errorf("topic %s, want %s", client.published[0].topic, want)
	}
}

func TestBridge_PromptPermission_NotConnected(t *testing.T) {
	b, client, _, _ := startedBridge(t)

	client.mu.Lock()
	client.connected = false
	client.mu.Unlock()

	err := b.PromptPermission(usb.Descriptor{DeviceName: "/dev/usb1"})
	if err == nil {
		t.Error("expected error while disconnected")
	}
}
