// Package hostbridge connects the input core to the platform host agent
// over MQTT.
//
// The host agent is the platform-specific process that enumerates USB
// devices, shows permission prompts and captures raw keystrokes. It
// publishes notifications the bridge consumes, and consumes permission
// prompts the bridge publishes:
//
//	posinput/host/attach              -> registry.OnAttach
//	posinput/host/detach              -> registry.OnDetach
//	posinput/host/permission          -> registry.OnPermissionResult
//	posinput/host/key                 -> key queue -> router.Route
//	posinput/host/permission/request  <- registry prompt (fire-and-forget)
//
// Registry notifications are applied directly on the MQTT handler
// goroutine; the registry serialises access internally. Key events take a
// different path: they are queued onto a bounded channel drained by a
// single dispatch goroutine, so buffers only ever see one goroutine and
// routing latency never blocks the MQTT client. When the queue is full the
// oldest guarantee is dropped input, not a stalled broker connection.
package hostbridge
