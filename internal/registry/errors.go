package registry

import "errors"

// Domain errors for the registry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, registry.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device name is not registered.
	ErrDeviceNotFound = errors.New("registry: device not found")

	// ErrNoMatch is returned by the correlator when an input source maps
	// to no registered USB device. This is a normal outcome (built-in or
	// virtual keyboards), not a failure, and is never logged as an error.
	ErrNoMatch = errors.New("registry: no matching device")

	// ErrNoPrompter is returned when a permission request is made but no
	// platform prompter has been configured.
	ErrNoPrompter = errors.New("registry: no permission prompter configured")

	// ErrPromptFailed is returned when issuing the platform permission
	// prompt fails.
	ErrPromptFailed = errors.New("registry: permission prompt failed")
)
