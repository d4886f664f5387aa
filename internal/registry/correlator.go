package registry

import (
	"strings"

	"github.com/holox/posinput/internal/usb"
)

// Correlator resolves an anonymous input-event source to a registered USB
// device descriptor.
//
// The input subsystem and the USB enumeration subsystem are separate OS
// services with no shared stable key: an input source exposes only a
// display name (typically "Vendor ProductName") and an opaque numeric id.
// Correlation is therefore a best-effort name match, in two stages:
//
//  1. The lower-cased display name contains the lower-cased product name
//     of a registered device (only attempted when the product name is
//     non-empty). Preferred because product names are specific.
//  2. Fallback: the display name contains the device's 4-hex-digit,
//     zero-padded vendor ID. Weaker - four hex digits can spuriously
//     appear in unrelated names - so it runs second.
//
// First match wins. No match means the event came from a non-USB source
// (built-in keyboard, on-screen keyboard) and is reported as ErrNoMatch,
// which callers treat as "pass through unrouted", not as a failure.
type Correlator struct {
	registry *Registry
	logger   Logger
}

// NewCorrelator creates a correlator backed by the given registry.
func NewCorrelator(reg *Registry) *Correlator {
	return &Correlator{
		registry: reg,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the correlator.
func (c *Correlator) SetLogger(logger Logger) {
	c.logger = logger
}

// Resolve maps an input-source display name to a registered descriptor.
// Returns ErrNoMatch when no registered device matches.
func (c *Correlator) Resolve(displayName string) (usb.Descriptor, error) {
	name := strings.ToLower(displayName)
	entries := c.registry.Snapshot()

	// Stage 1: product name containment.
	for _, entry := range entries {
		product := strings.ToLower(entry.Descriptor.ProductName)
		if product != "" && strings.Contains(name, product) {
			c.logger.Debug("correlated input source by product name",
				"input_source", displayName,
				"device_name", entry.Descriptor.DeviceName,
				"product_name", entry.Descriptor.ProductName,
			)
			return entry.Descriptor, nil
		}
	}

	// Stage 2: vendor ID fragment.
	for _, entry := range entries {
		if strings.Contains(name, entry.Descriptor.VendorIDHex()) {
			c.logger.Debug("correlated input source by vendor ID",
				"input_source", displayName,
				"device_name", entry.Descriptor.DeviceName,
				"vendor_id", entry.Descriptor.VendorIDHex(),
			)
			return entry.Descriptor, nil
		}
	}

	return usb.Descriptor{}, ErrNoMatch
}
