package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/holox/posinput/internal/usb"
)

// Type tags an event record on the consumer stream.
type Type string

// Event types on the consumer stream.
const (
	// TypeKeyPress is an advisory per-character notice for live display.
	// It carries no authority; only TypeInputComplete commits input.
	TypeKeyPress Type = "key_press"

	// TypeInputComplete is a committed input record (a full scan or a
	// typed entry terminated by Enter or the idle timeout).
	TypeInputComplete Type = "input_complete"

	// TypeDeviceAttached announces a newly attached USB input device.
	TypeDeviceAttached Type = "device_attached"

	// TypeDeviceDetached announces a detached USB input device.
	TypeDeviceDetached Type = "device_detached"

	// TypePermissionResult reports the outcome of a permission prompt.
	TypePermissionResult Type = "permission_result"
)

// Role identifies which input handler produced a key or record event.
type Role string

// Input roles. Each role owns exactly one buffering state machine.
const (
	RoleKeyboard Role = "keyboard"
	RoleScanner  Role = "scanner"
)

// Event is one tagged record on the consumer stream.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// KeyPress is the payload for TypeKeyPress.
type KeyPress struct {
	Char     string `json:"char"`
	IsDelete bool   `json:"isDelete"`
	Role     Role   `json:"role"`
}

// InputComplete is the payload for TypeInputComplete.
type InputComplete struct {
	Data   string `json:"data"`
	Length int    `json:"length"`
	Role   Role   `json:"role"`
}

// DevicePresence is the payload for TypeDeviceAttached and
// TypeDeviceDetached.
type DevicePresence struct {
	DeviceName   string           `json:"deviceName"`
	VendorID     uint16           `json:"vendorId"`
	ProductID    uint16           `json:"productId"`
	ProductName  string           `json:"productName"`
	DeviceType   usb.DeviceType   `json:"deviceType"`
	KeyboardKind usb.KeyboardKind `json:"keyboardKind,omitempty"`
}

// PermissionResult is the payload for TypePermissionResult.
type PermissionResult struct {
	Granted    bool   `json:"granted"`
	DeviceName string `json:"deviceName"`
	Message    string `json:"message"`
}

// New builds an event with a fresh ID and the current UTC timestamp.
func New(eventType Type, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
