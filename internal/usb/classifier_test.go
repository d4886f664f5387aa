package usb

import "testing"

// bootKeyboardInterface is a standard HID boot keyboard interface.
var bootKeyboardInterface = InterfaceDescriptor{Class: ClassHID, Subclass: SubclassBoot, Protocol: ProtocolKeyboard}

func TestClassify_TierTable(t *testing.T) {
	tests := []struct {
		name           string
		desc           Descriptor
		wantType       DeviceType
		wantConfidence float64
	}{
		{
			name:           "tier 1: scanner vendor",
			desc:           Descriptor{VendorID: 0x05e0, DeviceName: "/dev/bus/usb/001/002"},
			wantType:       TypeScanner,
			wantConfidence: 0.95,
		},
		{
			name:           "tier 2: scanner keyword in product name",
			desc:           Descriptor{VendorID: 0x9999, ProductName: "USB Barcode Scanner"},
			wantType:       TypeScanner,
			wantConfidence: 0.90,
		},
		{
			name:           "tier 2: localised brand token",
			desc:           Descriptor{VendorID: 0x9999, ProductName: "得力扫描平台"},
			wantType:       TypeScanner,
			wantConfidence: 0.90,
		},
		{
			name:           "tier 3: keyboard vendor",
			desc:           Descriptor{VendorID: 0x046d, ProductName: "G Pro"},
			wantType:       TypeKeyboard,
			wantConfidence: 0.90,
		},
		{
			name:           "tier 4: keyboard keyword",
			desc:           Descriptor{VendorID: 0x9999, ProductName: "Wired Numpad"},
			wantType:       TypeKeyboard,
			wantConfidence: 0.85,
		},
		{
			name: "tier 5: boot keyboard protocol",
			desc: Descriptor{
				VendorID:   0x9999,
				Interfaces: []InterfaceDescriptor{bootKeyboardInterface},
			},
			wantType:       TypeKeyboard,
			wantConfidence: 0.70,
		},
		{
			name: "tier 6: generic HID",
			desc: Descriptor{
				VendorID:   0x9999,
				Interfaces: []InterfaceDescriptor{{Class: ClassHID, Subclass: 0, Protocol: 0}},
			},
			wantType:       TypeKeyboard,
			wantConfidence: 0.60,
		},
		{
			name:           "no match: unknown",
			desc:           Descriptor{VendorID: 0x9999, ProductName: "Mystery Widget"},
			wantType:       TypeUnknown,
			wantConfidence: 0.0,
		},
		{
			name: "mouse boot protocol alone is not a keyboard signal",
			desc: Descriptor{
				VendorID:   0x9999,
				Interfaces: []InterfaceDescriptor{{Class: ClassHID, Subclass: SubclassBoot, Protocol: ProtocolMouse}},
			},
			wantType:       TypeKeyboard, // falls through to tier 6 (HID class), not tier 5
			wantConfidence: 0.60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.desc)
			if got.Type != tt.wantType {
				t.Errorf("Classify() type = %v, want %v (reason: %s)", got.Type, tt.wantType, got.Reason)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Classify() confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if got.Reason == "" {
				t.Error("Classify() reason is empty")
			}
		})
	}
}

func TestClassify_ScannerVendorBeatsKeyboardSignals(t *testing.T) {
	// A device with a professional scanner vendor ID, a keyboard keyword in
	// the product name AND a boot keyboard interface must still resolve to
	// Scanner: tier 1 precedes tiers 4 and 5.
	desc := Descriptor{
		VendorID:    0x0c2e, // Honeywell
		ProductName: "Honeywell USB Keyboard Wedge",
		Interfaces:  []InterfaceDescriptor{bootKeyboardInterface},
	}

	got := Classify(desc)
	if got.Type != TypeScanner {
		t.Fatalf("Classify() type = %v, want %v", got.Type, TypeScanner)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Classify() confidence = %v, want 0.95", got.Confidence)
	}
}

func TestClassify_ScannerKeywordBeatsKeyboardVendor(t *testing.T) {
	// Scanner keyword (tier 2) outranks keyboard vendor (tier 3): a Logitech
	// vendor ID with "scanner" in the name is still a scanner.
	desc := Descriptor{
		VendorID:    0x046d,
		ProductName: "2D Barcode Scanner",
	}

	got := Classify(desc)
	if got.Type != TypeScanner {
		t.Fatalf("Classify() type = %v, want %v", got.Type, TypeScanner)
	}
	if got.Confidence != 0.90 {
		t.Errorf("Classify() confidence = %v, want 0.90", got.Confidence)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	lower := Classify(Descriptor{ProductName: "barcode scanner"})
	upper := Classify(Descriptor{ProductName: "BARCODE SCANNER"})
	if lower != upper {
		t.Errorf("Classify() is case-sensitive: %+v != %+v", lower, upper)
	}
	if lower.Type != TypeScanner {
		t.Errorf("Classify() type = %v, want %v", lower.Type, TypeScanner)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	desc := Descriptor{
		VendorID:    0x1a86,
		ProductID:   0x7523,
		DeviceName:  "/dev/bus/usb/002/007",
		ProductName: "USB Serial",
		Interfaces:  []InterfaceDescriptor{bootKeyboardInterface},
	}

	first := Classify(desc)
	second := Classify(desc)
	if first != second {
		t.Errorf("Classify() not idempotent: %+v then %+v", first, second)
	}
}

func TestIsKeyboardCapable(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want bool
	}{
		{
			name: "boot keyboard",
			desc: Descriptor{Interfaces: []InterfaceDescriptor{bootKeyboardInterface}},
			want: true,
		},
		{
			name: "boot numpad protocol",
			desc: Descriptor{Interfaces: []InterfaceDescriptor{
				{Class: ClassHID, Subclass: SubclassBoot, Protocol: ProtocolMouse},
			}},
			want: true,
		},
		{
			name: "non-boot HID",
			desc: Descriptor{Interfaces: []InterfaceDescriptor{{Class: ClassHID}}},
			want: false,
		},
		{
			name: "no interfaces",
			desc: Descriptor{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKeyboardCapable(tt.desc); got != tt.want {
				t.Errorf("IsKeyboardCapable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyboardKindOf(t *testing.T) {
	standard := Descriptor{Interfaces: []InterfaceDescriptor{bootKeyboardInterface}}
	if got := KeyboardKindOf(standard); got != KeyboardStandard {
		t.Errorf("KeyboardKindOf(standard) = %v, want %v", got, KeyboardStandard)
	}

	numpad := Descriptor{Interfaces: []InterfaceDescriptor{
		{Class: ClassHID, Subclass: SubclassBoot, Protocol: ProtocolMouse},
	}}
	if got := KeyboardKindOf(numpad); got != KeyboardNumpad {
		t.Errorf("KeyboardKindOf(numpad) = %v, want %v", got, KeyboardNumpad)
	}

	none := Descriptor{Interfaces: []InterfaceDescriptor{{Class: 7}}}
	if got := KeyboardKindOf(none); got != KeyboardUnknown {
		t.Errorf("KeyboardKindOf(none) = %v, want %v", got, KeyboardUnknown)
	}
}

func TestVendorIDHex(t *testing.T) {
	d := Descriptor{VendorID: 0x05e0}
	if got := d.VendorIDHex(); got != "05e0" {
		t.Errorf("VendorIDHex() = %q, want %q", got, "05e0")
	}
}
