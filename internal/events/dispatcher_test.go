package events

import (
	"sync"
	"testing"
	"time"

	"github.com/holox/posinput/internal/usb"
)

// collector gathers delivered events for assertions.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(ev Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
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

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var c collector
	d.Subscribe("test", c.handle)

	for i := 0; i < 10; i++ {
		d.Publish(New(TypeKeyPress, KeyPress{Char: string(rune('a' + i)), Role: RoleScanner}))
	}

	waitFor(t, func() bool { return len(c.snapshot()) == 10 })

	got := c.snapshot()
	for i, ev := range got {
		want := string(rune('a' + i))
		payload, ok := ev.Payload.(KeyPress)
		if !ok {
			t.Fatalf("event %d payload type %T, want KeyPress", i, ev.Payload)
		}
		if payload.Char != want {
			t.Errorf("event %d char = %q, want %q (out of order delivery)", i, payload.Char, want)
		}
	}
}

func TestDispatcher_FanOut(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var a, b collector
	d.Subscribe("a", a.handle)
	d.Subscribe("b", b.handle)

	d.Publish(New(TypeDeviceAttached, DevicePresence{DeviceName: "/dev/bus/usb/001/002", DeviceType: usb.TypeScanner}))

	waitFor(t, func() bool { return len(a.snapshot()) == 1 && len(b.snapshot()) == 1 })
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	d.Subscribe("slow", func(Event) {
		once.Do(func() { close(started) })
		<-block
	})

	// First event occupies the handler; fill the queue past capacity.
	d.Publish(New(TypeKeyPress, KeyPress{}))
	<-started
	for i := 0; i < subscriberQueueSize+50; i++ {
		d.Publish(New(TypeKeyPress, KeyPress{}))
	}

	if dropped := d.DroppedCount("slow"); dropped < 1 {
		t.Errorf("DroppedCount() = %d, want at least 1", dropped)
	}

	close(block)
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var c collector
	d.Subscribe("gone", c.handle)
	d.Unsubscribe("gone")

	d.Publish(New(TypeKeyPress, KeyPress{}))
	time.Sleep(20 * time.Millisecond)

	if n := len(c.snapshot()); n != 0 {
		t.Errorf("received %d events after unsubscribe, want 0", n)
	}
	if n := d.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", n)
	}
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	d := NewDispatcher()

	var c collector
	d.Subscribe("test", c.handle)
	d.Close()

	// Must not panic or deliver.
	d.Publish(New(TypeKeyPress, KeyPress{}))

	if n := len(c.snapshot()); n != 0 {
		t.Errorf("received %d events after close, want 0", n)
	}
}

func TestNew_PopulatesIDAndTimestamp(t *testing.T) {
	ev := New(TypeInputComplete, InputComplete{Data: "ABC", Length: 3, Role: RoleScanner})
	if ev.ID == "" {
		t.Error("New() event ID is empty")
	}
	if ev.Timestamp.IsZero() {
		t.Error("New() event timestamp is zero")
	}
	if ev.Type != TypeInputComplete {
		t.Errorf("New() type = %v, want %v", ev.Type, TypeInputComplete)
	}
}
