// Package usb provides the USB device descriptor model and the device
// classification engine for POS Input Core.
//
// The Classification Engine answers one question: given an opaque USB
// descriptor, which role does the device play at the till? USB gives no
// single reliable signal for this - barcode scanners, numeric keypads and
// full keyboards all present themselves as HID boot keyboards - so the
// engine evaluates a priority cascade of signals from strongest to weakest:
//
//	┌──────┬────────────┬────────────────────────────────────────────┐
//	│ Tier │ Confidence │ Signal                                     │
//	├──────┼────────────┼────────────────────────────────────────────┤
//	│  1   │   0.95     │ professional scanner vendor ID             │
//	│  2   │   0.90     │ scanner keyword in product name            │
//	│  3   │   0.90     │ known keyboard vendor ID                   │
//	│  4   │   0.85     │ keyboard keyword in product name           │
//	│  5   │   0.70     │ HID boot keyboard interface protocol       │
//	│  6   │   0.60     │ any HID interface                          │
//	└──────┴────────────┴────────────────────────────────────────────┘
//
// The first matching tier wins and later tiers are never evaluated, which
// makes "scanner beats keyboard" a hard policy rather than a score fight.
// Classify is a pure function: the same descriptor always produces the
// same result, which is what lets the registry cache classifications.
package usb
