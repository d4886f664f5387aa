package usb

import "fmt"

// USB HID interface class codes, per the USB HID specification.
const (
	// ClassHID is the interface class for Human Interface Devices.
	ClassHID = 3

	// SubclassBoot is the HID subclass for boot-protocol devices.
	SubclassBoot = 1

	// ProtocolKeyboard is the HID boot protocol code for keyboards.
	ProtocolKeyboard = 1

	// ProtocolMouse is the HID boot protocol code for mice. Some vendors
	// reuse this code for numeric keypads, so it is keyboard-adjacent but
	// never treated as a keyboard signal by the classifier.
	ProtocolMouse = 2
)

// DeviceType is the functional role assigned to a USB device.
// A device has exactly one type at any time; the type decides which
// input handler (if any) may receive its key events.
type DeviceType string

// Device types, in classification priority order.
const (
	TypeScanner    DeviceType = "scanner"
	TypeKeyboard   DeviceType = "keyboard"
	TypePrinter    DeviceType = "printer"
	TypeCardReader DeviceType = "card_reader"
	TypeUnknown    DeviceType = "unknown"
)

// KeyboardKind distinguishes keyboard form factors reported in device
// summaries and attach events.
type KeyboardKind string

// Keyboard kinds derived from the HID boot interface protocol.
const (
	KeyboardStandard KeyboardKind = "standard"
	KeyboardNumpad   KeyboardKind = "numpad"
	KeyboardUnknown  KeyboardKind = "unknown"
)

// InterfaceDescriptor describes a single USB interface.
type InterfaceDescriptor struct {
	Class    uint8 `json:"class"`
	Subclass uint8 `json:"subclass"`
	Protocol uint8 `json:"protocol"`
}

// Descriptor is an immutable snapshot of one enumerated USB device.
//
// A Descriptor is created at enumeration or attach time and never mutated;
// re-enumeration supersedes it with a fresh value. DeviceName is the stable
// OS identifier (e.g. "/dev/bus/usb/001/004") and is the registry key.
// ProductName and ManufacturerName are operator-visible strings and may be
// empty - the platform is not required to read string descriptors.
type Descriptor struct {
	VendorID         uint16                `json:"vendor_id"`
	ProductID        uint16                `json:"product_id"`
	DeviceName       string                `json:"device_name"`
	ProductName      string                `json:"product_name,omitempty"`
	ManufacturerName string                `json:"manufacturer_name,omitempty"`
	Interfaces       []InterfaceDescriptor `json:"interfaces,omitempty"`
}

// VendorIDHex returns the vendor ID as a 4-digit zero-padded hex string,
// e.g. 0x5e0 -> "05e0". This is the form that appears embedded in input
// subsystem display names and is used by the correlator's fallback match.
func (d Descriptor) VendorIDHex() string {
	return fmt.Sprintf("%04x", d.VendorID)
}

// ClassificationResult is the outcome of classifying one descriptor.
//
// Confidence is in [0,1] and is fully determined by the matching tier; it
// is never blended across tiers. Reason is a human-readable diagnostic and
// carries no semantics.
type ClassificationResult struct {
	Type       DeviceType `json:"type"`
	Confidence float64    `json:"confidence"`
	Reason     string     `json:"reason"`
}
