// Package process provides generic subprocess lifecycle management.
//
// This package is designed for managing long-running child processes like
// the host USB agent that feeds the daemon's MQTT topics.
//
// Features:
//   - Start/stop subprocess with graceful shutdown
//   - Automatic restart on failure with configurable backoff
//   - Health monitoring and status reporting
//   - Log capture from subprocess stdout/stderr
//   - Context-based cancellation for clean shutdown
//
// Example usage:
//
//	mgr := process.NewManager(process.Config{
//	    Name:              "host-agent",
//	    Binary:            "/usr/local/bin/posinput-agent",
//	    Args:              []string{"--broker", "tcp://127.0.0.1:1883"},
//	    RestartOnFailure:  true,
//	    RestartDelay:      5 * time.Second,
//	    MaxRestartAttempts: 10,
//	})
//
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Stop()
package process
