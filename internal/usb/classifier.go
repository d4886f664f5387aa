package usb

import (
	"fmt"
	"strings"
)

// Tier confidence values. Strictly ordered so no two classification bases
// can tie; the cascade short-circuits on the first match.
const (
	confidenceScannerVendor   = 0.95
	confidenceScannerKeyword  = 0.90
	confidenceKeyboardVendor  = 0.90
	confidenceKeyboardKeyword = 0.85
	confidenceBootKeyboard    = 0.70
	confidenceGenericHID      = 0.60
)

// professionalScannerVendors maps vendor IDs of professional barcode
// scanner manufacturers (and chipset vendors commonly found in scanners)
// to a display name used in the classification reason.
var professionalScannerVendors = map[uint16]string{
	0x05e0: "Symbol Technologies",
	0x0c2e: "Honeywell",
	0x0536: "Hand Held Products",
	0x1f3a: "Allwinner Technology",
	0x1a86: "QinHeng Electronics",
	0x0483: "STMicroelectronics",
	0x1a40: "Terminus Technology",
	0x2687: "Fitbit",
	0x05ac: "Apple",
}

// knownKeyboardVendors maps vendor IDs of established keyboard brands.
var knownKeyboardVendors = map[uint16]string{
	0x046d: "Logitech",
	0x045e: "Microsoft",
	0x04d9: "Holtek",
	0x1ea7: "Rapoo",
	0x258a: "Sino Wealth",
	0x3151: "Ziyou Lang",
}

// scannerKeywords are matched against the lower-cased product name.
// The list mixes English terms with brand tokens in their native script
// because operators in different regions configure product strings in
// their own language.
var scannerKeywords = []string{
	"scanner", "barcode", "qr", "reader",
	"deli", "得力",
	"newland", "新大陆",
	"mindeo", "民德",
}

// keyboardKeywords are matched against the lower-cased product name.
var keyboardKeywords = []string{
	"keyboard", "键盘",
	"numpad", "numeric",
	"数字键盘", "小键盘",
	"keypad", "num pad",
	"usb keyboard",
}

// Classify determines the functional role of a USB device.
//
// It is pure and total: identical descriptors always yield identical
// results, and descriptors matching no rule yield TypeUnknown with zero
// confidence rather than an error. All string matching is case-insensitive.
func Classify(d Descriptor) ClassificationResult {
	productName := strings.ToLower(d.ProductName)

	// Tier 1: professional scanner vendors. Vendor IDs encode manufacturer
	// intent and are the most reliable signal available.
	if vendor, ok := professionalScannerVendors[d.VendorID]; ok {
		return ClassificationResult{
			Type:       TypeScanner,
			Confidence: confidenceScannerVendor,
			Reason:     fmt.Sprintf("professional scanner vendor ID 0x%04x (%s)", d.VendorID, vendor),
		}
	}

	// Tier 2: scanner keywords in the product name.
	for _, kw := range scannerKeywords {
		if strings.Contains(productName, kw) {
			return ClassificationResult{
				Type:       TypeScanner,
				Confidence: confidenceScannerKeyword,
				Reason:     fmt.Sprintf("product name %q contains scanner keyword %q", productName, kw),
			}
		}
	}

	// Tier 3: known keyboard vendors. Evaluated after both scanner tiers so
	// a scanner built on a keyboard-brand controller still routes as a
	// scanner - scanners misfiring as keyboards is the failure mode this
	// cascade exists to prevent.
	if vendor, ok := knownKeyboardVendors[d.VendorID]; ok {
		return ClassificationResult{
			Type:       TypeKeyboard,
			Confidence: confidenceKeyboardVendor,
			Reason:     fmt.Sprintf("known keyboard vendor ID 0x%04x (%s)", d.VendorID, vendor),
		}
	}

	// Tier 4: keyboard keywords in the product name.
	for _, kw := range keyboardKeywords {
		if strings.Contains(productName, kw) {
			return ClassificationResult{
				Type:       TypeKeyboard,
				Confidence: confidenceKeyboardKeyword,
				Reason:     fmt.Sprintf("product name %q contains keyboard keyword %q", productName, kw),
			}
		}
	}

	// Tier 5: HID boot keyboard protocol. Weak - many scanners emulate the
	// identical protocol, which is why the vendor and keyword tiers run first.
	if hasBootKeyboardInterface(d) {
		return ClassificationResult{
			Type:       TypeKeyboard,
			Confidence: confidenceBootKeyboard,
			Reason:     "HID boot keyboard protocol detected",
		}
	}

	// Tier 6: any HID interface. Catches numeric keypads that skip the boot
	// protocol. Heuristic: this also sweeps up unrelated HID peripherals
	// (e.g. HID-class card readers) as keyboards; kept for compatibility
	// with deployed behaviour.
	if hasHIDInterface(d) {
		return ClassificationResult{
			Type:       TypeKeyboard,
			Confidence: confidenceGenericHID,
			Reason:     "generic HID device, not identified as scanner",
		}
	}

	return ClassificationResult{
		Type:       TypeUnknown,
		Confidence: 0.0,
		Reason:     "no matching criteria",
	}
}

// IsScanner reports whether the descriptor classifies as a barcode scanner.
func IsScanner(d Descriptor) bool {
	return Classify(d).Type == TypeScanner
}

// IsKeyboard reports whether the descriptor classifies as a keyboard.
func IsKeyboard(d Descriptor) bool {
	return Classify(d).Type == TypeKeyboard
}

// IsKeyboardCapable reports whether the device presents a HID boot
// interface with a keyboard or numpad protocol, i.e. whether it can emit
// keystrokes at all. This is a capability check, not a role check: a
// scanner is keyboard-capable but classifies as TypeScanner.
func IsKeyboardCapable(d Descriptor) bool {
	for _, iface := range d.Interfaces {
		if iface.Class == ClassHID && iface.Subclass == SubclassBoot &&
			(iface.Protocol == ProtocolKeyboard || iface.Protocol == ProtocolMouse) {
			return true
		}
	}
	return false
}

// KeyboardKindOf derives the keyboard form factor from the first HID boot
// interface. Devices without a boot interface report KeyboardUnknown.
func KeyboardKindOf(d Descriptor) KeyboardKind {
	for _, iface := range d.Interfaces {
		if iface.Class != ClassHID || iface.Subclass != SubclassBoot {
			continue
		}
		switch iface.Protocol {
		case ProtocolKeyboard:
			return KeyboardStandard
		case ProtocolMouse:
			return KeyboardNumpad
		default:
			return KeyboardUnknown
		}
	}
	return KeyboardUnknown
}

// hasBootKeyboardInterface checks for an exact HID boot keyboard interface.
// The mouse protocol is deliberately excluded here: tier 5 is a keyboard
// signal, and protocol 2 alone says nothing about keystroke capability.
func hasBootKeyboardInterface(d Descriptor) bool {
	for _, iface := range d.Interfaces {
		if iface.Class == ClassHID && iface.Subclass == SubclassBoot && iface.Protocol == ProtocolKeyboard {
			return true
		}
	}
	return false
}

// hasHIDInterface checks for any HID-class interface.
func hasHIDInterface(d Descriptor) bool {
	for _, iface := range d.Interfaces {
		if iface.Class == ClassHID {
			return true
		}
	}
	return false
}

// Logger is the minimal logging interface accepted by LogDescriptor.
type Logger interface {
	Debug(msg string, args ...any)
}

// LogDescriptor emits the full descriptor detail at debug level. The
// registry calls this at attach time for field diagnosis of misclassified
// devices; it has no effect on classification.
func LogDescriptor(logger Logger, d Descriptor, result ClassificationResult) {
	if logger == nil {
		return
	}
	logger.Debug("classified USB device",
		"device_name", d.DeviceName,
		"vendor_id", fmt.Sprintf("0x%04x", d.VendorID),
		"product_id", fmt.Sprintf("0x%04x", d.ProductID),
		"product_name", d.ProductName,
		"manufacturer", d.ManufacturerName,
		"interfaces", len(d.Interfaces),
		"type", result.Type,
		"confidence", result.Confidence,
		"reason", result.Reason,
	)
}
