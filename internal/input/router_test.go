package input

import (
	"context"
	"testing"

	"github.com/holox/posinput/internal/events"
	"github.com/holox/posinput/internal/registry"
	"github.com/holox/posinput/internal/usb"
)

// fakeHandler records delivered events and returns a fixed consumed flag.
type fakeHandler struct {
	received []KeyEvent
	consume  bool
}

func (f *fakeHandler) HandleKey(ev KeyEvent) bool {
	f.received = append(f.received, ev)
	return f.consume
}

func testRouter(t *testing.T) (*Router, *fakeHandler, *fakeHandler) {
	t.Helper()

	reg := registry.NewRegistry(nil, nil)
	reg.OnAttach(context.Background(), usb.Descriptor{
		VendorID:    0x0c2e, // Honeywell: classifies as scanner
		ProductID:   0x0b01,
		DeviceName:  "/dev/usb1",
		ProductName: "Voyager 1250g",
	})
	reg.OnAttach(context.Background(), usb.Descriptor{
		VendorID:    0x046d, // Logitech: classifies as keyboard
		ProductID:   0xc31c,
		DeviceName:  "/dev/usb2",
		ProductName: "K120 Keyboard",
	})
	reg.OnAttach(context.Background(), usb.Descriptor{
		VendorID:    0x04b8,
		ProductID:   0x0202,
		DeviceName:  "/dev/usb3",
		ProductName: "TM-T88V Receipt Printer",
		Interfaces:  []usb.InterfaceDescriptor{{Class: 7, Subclass: 1, Protocol: 2}},
	})

	keyboard := &fakeHandler{consume: true}
	scanner := &fakeHandler{consume: true}

	router := NewRouter(registry.NewCorrelator(reg), reg)
	router.SetHandler(events.RoleKeyboard, keyboard)
	router.SetHandler(events.RoleScanner, scanner)

	return router, keyboard, scanner
}

func TestRoute_StrictRoleIsolation(t *testing.T) {
	router, keyboard, scanner := testRouter(t)

	batch := []struct {
		source   string
		wantRole events.Role
	}{
		{"Honeywell Voyager 1250g", events.RoleScanner},
		{"Logitech K120 Keyboard", events.RoleKeyboard},
		{"Honeywell Voyager 1250g", events.RoleScanner},
		{"Honeywell Voyager 1250g", events.RoleScanner},
		{"Logitech K120 Keyboard", events.RoleKeyboard},
	}

	var wantScanner, wantKeyboard int
	for _, item := range batch {
		if !router.Route(KeyEvent{SourceName: item.source, Action: ActionDown, Char: 'x'}) {
			t.Fatalf("expected event from %q to be handled", item.source)
		}
		if item.wantRole == events.RoleScanner {
			wantScanner++
		} else {
			wantKeyboard++
		}
	}

	if len(scanner.received) != wantScanner {
		t.Errorf("scanner handler saw %d events, want %d", len(scanner.received), wantScanner)
	}
	if len(keyboard.received) != wantKeyboard {
		t.Errorf("keyboard handler saw %d events, want %d", len(keyboard.received), wantKeyboard)
	}
	if len(scanner.received)+len(keyboard.received) != len(batch) {
		t.Error("an event reached more than one handler or none")
	}
}

func TestRoute_UnmatchedSourceUnhandled(t *testing.T) {
	router, keyboard, scanner := testRouter(t)

	if router.Route(KeyEvent{SourceName: "AT Translated Set 2 keyboard", Action: ActionDown, Char: 'x'}) {
		t.Error("expected non-USB source to be unhandled")
	}
	if len(keyboard.received) != 0 || len(scanner.received) != 0 {
		t.Error("unmatched event must reach no handler")
	}
}

func TestRoute_NonInputDeviceUnhandled(t *testing.T) {
	router, keyboard, scanner := testRouter(t)

	if router.Route(KeyEvent{SourceName: "TM-T88V Receipt Printer", Action: ActionDown, Char: 'x'}) {
		t.Error("expected printer-classified source to be unhandled")
	}
	if len(keyboard.received) != 0 || len(scanner.received) != 0 {
		t.Error("printer event must reach no handler")
	}
}

func TestRoute_MissingHandlerUnhandled(t *testing.T) {
	reg := registry.NewRegistry(nil, nil)
	reg.OnAttach(context.Background(), usb.Descriptor{
		VendorID:    0x0c2e,
		ProductID:   0x0b01,
		DeviceName:  "/dev/usb1",
		ProductName: "Voyager 1250g",
	})

	router := NewRouter(registry.NewCorrelator(reg), reg)

	if router.Route(KeyEvent{SourceName: "Honeywell Voyager 1250g", Action: ActionDown, Char: 'x'}) {
		t.Error("expected unhandled with no handler attached")
	}
}

func TestRoute_HandlerConsumedFlagPropagates(t *testing.T) {
	router, keyboard, _ := testRouter(t)
	keyboard.consume = false

	if router.Route(KeyEvent{SourceName: "Logitech K120 Keyboard", Action: ActionDown, Char: 'x'}) {
		t.Error("expected unhandled when the handler declines the event")
	}
	if len(keyboard.received) != 1 {
		t.Errorf("handler should still have seen the event, got %d", len(keyboard.received))
	}
}

func TestRoute_WithRealBuffers(t *testing.T) {
	reg := registry.NewRegistry(nil, nil)
	reg.OnAttach(context.Background(), usb.Descriptor{
		VendorID:    0x0c2e,
		ProductID:   0x0b01,
		DeviceName:  "/dev/usb1",
		ProductName: "Voyager 1250g",
	})

	pub := &capture{}
	scannerBuf := NewBuffer(events.RoleScanner, pub, 0)

	router := NewRouter(registry.NewCorrelator(reg), reg)
	router.SetHandler(events.RoleScanner, scannerBuf)

	for _, c := range "4006381333931" {
		router.Route(KeyEvent{SourceName: "Honeywell Voyager 1250g", Action: ActionDown, Char: c})
	}
	router.Route(KeyEvent{SourceName: "Honeywell Voyager 1250g", Action: ActionDown, Key: KeyEnter})

	records := pub.records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Data != "4006381333931" {
		t.Errorf("unexpected record %q", records[0].Data)
	}
}
