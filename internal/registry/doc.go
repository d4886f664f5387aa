// Package registry provides the Device Registry for POS Input Core.
//
// The registry is the single source of truth mapping a USB device identity
// (its stable OS device name) to its cached classification and permission
// state. It is mutated from two independent execution contexts - host
// notifications (attach/detach/permission results) arrive from the host
// bridge, while classification lookups happen on the input-dispatch path -
// so all map access is guarded by one mutex. The lock is held only for the
// duration of a lookup, insert or remove; it is never held across an event
// emission or a permission prompt.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────────┐
//	│                        Device Registry                         │
//	│                                                                │
//	│  ┌────────────────┐   ┌────────────────┐   ┌────────────────┐  │
//	│  │    Registry    │   │   Correlator   │   │  SQLiteStore   │  │
//	│  │ (registry.go)  │──▶│(correlator.go) │   │   (store.go)   │  │
//	│  │                │   │                │   │                │  │
//	│  │ • attach/detach│   │ • name match   │   │ • sightings    │  │
//	│  │ • permissions  │   │ • vendor hex   │   │ • grant persist│  │
//	│  │ • cached class.│   │   fallback     │   │                │  │
//	│  └────────────────┘   └────────────────┘   └────────────────┘  │
//	└────────────────────────────────────────────────────────────────┘
//
// Classification is computed exactly once per sighting and cached on the
// entry; usb.Classify is pure, so the cache can never go stale while the
// descriptor is unchanged. Permission grants are keyed on (vendor ID,
// product ID) and persisted through an optional store so a device that was
// granted permission comes back Granted when re-attached, matching the
// platform's remembered-grant behaviour.
package registry
