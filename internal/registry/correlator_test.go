package registry

import (
	"context"
	"errors"
	"testing"
)

func TestResolve_ByProductName(t *testing.T) {
	reg := NewRegistry(nil, nil)
	reg.OnAttach(context.Background(), scannerDesc("/dev/usb1"))

	c := NewCorrelator(reg)
	desc, err := c.Resolve("Honeywell Voyager 1250g USB Keyboard")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc.DeviceName != "/dev/usb1" {
		t.Errorf("expected /dev/usb1, got %s", desc.DeviceName)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	reg := NewRegistry(nil, nil)
	reg.OnAttach(context.Background(), keyboardDesc("/dev/usb2"))

	c := NewCorrelator(reg)
	desc, err := c.Resolve("LOGITECH K120 KEYBOARD")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc.DeviceName != "/dev/usb2" {
		t.Errorf("expected /dev/usb2, got %s", desc.DeviceName)
	}
}

func TestResolve_VendorHexFallback(t *testing.T) {
	reg := NewRegistry(nil, nil)
	desc := scannerDesc("/dev/usb1")
	desc.ProductName = "" // forces the vendor ID stage
	reg.OnAttach(context.Background(), desc)

	c := NewCorrelator(reg)
	got, err := c.Resolve("HID 0c2e:0b01 input device")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.DeviceName != "/dev/usb1" {
		t.Errorf("expected /dev/usb1, got %s", got.DeviceName)
	}
}

func TestResolve_ProductNamePreferredOverVendorHex(t *testing.T) {
	reg := NewRegistry(nil, nil)

	// Device whose vendor hex happens to appear in the source name.
	byVendor := keyboardDesc("/dev/usb1")
	byVendor.ProductName = ""
	byVendor.VendorID = 0x1250
	reg.OnAttach(context.Background(), byVendor)

	// Device whose product name matches outright.
	reg.OnAttach(context.Background(), scannerDesc("/dev/usb2"))

	c := NewCorrelator(reg)
	got, err := c.Resolve("Voyager 1250g")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.DeviceName != "/dev/usb2" {
		t.Errorf("expected product-name match /dev/usb2, got %s", got.DeviceName)
	}
}

func TestResolve_EmptyProductNameNeverMatches(t *testing.T) {
	reg := NewRegistry(nil, nil)
	desc := scannerDesc("/dev/usb1")
	desc.ProductName = ""
	reg.OnAttach(context.Background(), desc)

	c := NewCorrelator(reg)
	if _, err := c.Resolve("Built-in Keyboard"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	reg := NewRegistry(nil, nil)
	reg.OnAttach(context.Background(), scannerDesc("/dev/usb1"))

	c := NewCorrelator(reg)
	if _, err := c.Resolve("AT Translated Set 2 keyboard"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	c := NewCorrelator(NewRegistry(nil, nil))
	if _, err := c.Resolve("anything"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}
