package hostbridge

import (
	"encoding/json"
	"fmt"

	"github.com/holox/posinput/internal/input"
	"github.com/holox/posinput/internal/usb"
)

// MQTT message types exchanged with the host agent. Field names match the
// agent's JSON wire format.

// InterfaceMessage is one USB interface descriptor on the wire.
type InterfaceMessage struct {
	Class    uint8 `json:"class"`
	Subclass uint8 `json:"subclass"`
	Protocol uint8 `json:"protocol"`
}

// AttachMessage announces a newly attached USB device.
// Topic: posinput/host/attach
type AttachMessage struct {
	DeviceName       string             `json:"deviceName"`
	VendorID         uint16             `json:"vendorId"`
	ProductID        uint16             `json:"productId"`
	ProductName      string             `json:"productName,omitempty"`
	ManufacturerName string             `json:"manufacturerName,omitempty"`
	Interfaces       []InterfaceMessage `json:"interfaces,omitempty"`
}

// Descriptor converts the wire message to a registry descriptor.
func (m AttachMessage) Descriptor() usb.Descriptor {
	ifaces := make([]usb.InterfaceDescriptor, 0, len(m.Interfaces))
	for _, i := range m.Interfaces {
		ifaces = append(ifaces, usb.InterfaceDescriptor{
			Class:    i.Class,
			Subclass: i.Subclass,
			Protocol: i.Protocol,
		})
	}
	return usb.Descriptor{
		VendorID:         m.VendorID,
		ProductID:        m.ProductID,
		DeviceName:       m.DeviceName,
		ProductName:      m.ProductName,
		ManufacturerName: m.ManufacturerName,
		Interfaces:       ifaces,
	}
}

// DetachMessage announces a detached USB device.
// Topic: posinput/host/detach
type DetachMessage struct {
	DeviceName string `json:"deviceName"`
}

// PermissionResultMessage reports the outcome of a permission prompt.
// Topic: posinput/host/permission
type PermissionResultMessage struct {
	DeviceName string `json:"deviceName"`
	Granted    bool   `json:"granted"`
}

// KeyMessage is one raw keystroke from the host input subsystem.
// Topic: posinput/host/key
type KeyMessage struct {
	SourceName string `json:"sourceName"`
	Action     string `json:"action"`
	Key        string `json:"key,omitempty"`
	Char       string `json:"char,omitempty"`
}

// KeyEvent converts the wire message to a router key event. Only the
// first rune of Char is significant; the agent sends one character per
// keystroke.
func (m KeyMessage) KeyEvent() input.KeyEvent {
	ev := input.KeyEvent{
		SourceName: m.SourceName,
		Action:     input.Action(m.Action),
		Key:        input.Key(m.Key),
	}
	for _, r := range m.Char {
		ev.Char = r
		break
	}
	return ev
}

// PermissionRequestMessage asks the host agent to show a permission prompt.
// Topic: posinput/host/permission/request
type PermissionRequestMessage struct {
	DeviceName  string `json:"deviceName"`
	VendorID    uint16 `json:"vendorId"`
	ProductID   uint16 `json:"productId"`
	ProductName string `json:"productName,omitempty"`
}

// decode unmarshals a host message payload with a consistent error shape.
func decode(topic string, payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decoding %s message: %w", topic, err)
	}
	return nil
}
