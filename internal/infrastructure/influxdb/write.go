package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteInputRecord records one committed input record.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Only the record length is recorded, never its content: scan and
// keyboard data may contain payment-adjacent values that must not reach
// the telemetry store.
//
// Parameters:
//   - stationID: The till/checkout station identifier
//   - role: The input role ("scanner" or "keyboard")
//   - length: Character count of the committed record
//
// Example:
//
//	client.WriteInputRecord("till-001", "scanner", 13)
func (c *Client) WriteInputRecord(stationID string, role string, length int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"input_records",
		map[string]string{
			"station": stationID,
			"role":    role,
		},
		map[string]interface{}{
			"length": length,
			"count":  1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDevicePresence records a device attach or detach.
//
// Parameters:
//   - stationID: The till/checkout station identifier
//   - deviceType: Classified device type ("scanner", "keyboard", ...)
//   - event: "attach" or "detach"
func (c *Client) WriteDevicePresence(stationID string, deviceType string, event string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_presence",
		map[string]string{
			"station":     stationID,
			"device_type": deviceType,
			"event":       event,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePermissionResult records a permission prompt outcome.
//
// Parameters:
//   - stationID: The till/checkout station identifier
//   - granted: Whether the operator granted access
func (c *Client) WritePermissionResult(stationID string, granted bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"permission_results",
		map[string]string{
			"station": stationID,
		},
		map[string]interface{}{
			"granted": granted,
			"count":   1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("daemon_stats",
//	    map[string]string{"station": "till-001"},
//	    map[string]interface{}{"devices": 3, "dropped_events": 0})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
