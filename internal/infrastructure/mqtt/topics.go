package mqtt

import "fmt"

// Topic prefixes for the POS input message bus.
//
// The host bridge publishes raw USB notifications under posinput/host/...
// and the daemon mirrors its consumer event stream under posinput/event/...
const (
	// TopicPrefix is the base for all POS input topics.
	TopicPrefix = "posinput"

	// TopicPrefixHost is the base for inbound host notifications.
	TopicPrefixHost = "posinput/host"

	// TopicPrefixEvent is the base for the mirrored consumer event stream.
	TopicPrefixEvent = "posinput/event"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "posinput/system"
)

// Topics provides builders for POS input MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	attachTopic := topics.HostAttach()
//	// Returns: "posinput/host/attach"
type Topics struct{}

// =============================================================================
// Host Topics (inbound notifications from the host USB/input agent)
// =============================================================================

// HostAttach returns the topic for USB attach notifications.
//
// Example: posinput/host/attach
func (Topics) HostAttach() string {
	return fmt.Sprintf("%s/attach", TopicPrefixHost)
}

// HostDetach returns the topic for USB detach notifications.
//
// Example: posinput/host/detach
func (Topics) HostDetach() string {
	return fmt.Sprintf("%s/detach", TopicPrefixHost)
}

// HostPermission returns the topic for permission prompt outcomes.
//
// Example: posinput/host/permission
func (Topics) HostPermission() string {
	return fmt.Sprintf("%s/permission", TopicPrefixHost)
}

// HostKey returns the topic for raw key events.
//
// Example: posinput/host/key
func (Topics) HostKey() string {
	return fmt.Sprintf("%s/key", TopicPrefixHost)
}

// HostPermissionRequest returns the topic the daemon publishes permission
// prompts to. The host agent shows the prompt and reports the outcome back
// on HostPermission.
//
// Example: posinput/host/permission/request
func (Topics) HostPermissionRequest() string {
	return fmt.Sprintf("%s/permission/request", TopicPrefixHost)
}

// =============================================================================
// Event Topics (outbound mirror of the consumer stream)
// =============================================================================

// Event returns the topic for one mirrored consumer event type.
//
// Example: posinput/event/input_complete
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvent, eventType)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the daemon status topic (online/offline, LWT).
//
// Example: posinput/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllHost returns a pattern matching every host notification topic.
//
// Pattern: posinput/host/#
func (Topics) AllHost() string {
	return fmt.Sprintf("%s/#", TopicPrefixHost)
}

// AllEvents returns a pattern matching the whole mirrored event stream.
//
// Pattern: posinput/event/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+", TopicPrefixEvent)
}

// AllTopics returns a pattern matching all POS input topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: posinput/#
func (Topics) AllTopics() string {
	return "posinput/#"
}
