// Package mqtt provides MQTT client connectivity for the POS input daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The daemon uses MQTT as the message bus between the host USB/input agent
// and the input core. The broker decouples the daemon from the
// platform-specific agent that enumerates USB devices and captures raw
// keystrokes.
//
//	Host agent ↔ MQTT Broker ↔ POS input daemon ↔ consumers
//
// Inbound host notifications arrive under posinput/host/... and the
// daemon's consumer event stream is mirrored under posinput/event/...
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all host notifications
//	err = client.Subscribe(mqtt.Topics{}.AllHost(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Mirror a consumer event
//	topic := mqtt.Topics{}.Event("input_complete")
//	client.Publish(topic, payload, 0, false)
package mqtt
