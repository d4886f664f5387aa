// POS Input Daemon
//
// This is the main entry point for the POS input daemon. The daemon sits
// between the platform host agent (which owns the USB devices) and the
// till application, providing:
//   - USB device classification (scanner vs keyboard vs printer vs card reader)
//   - Permission lifecycle tracking with persisted grants
//   - Keystroke buffering that turns raw key events into committed records
//   - A REST/WebSocket API plus an MQTT mirror of the consumer event stream
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/holox/posinput/migrations"

	"github.com/holox/posinput/internal/api"
	"github.com/holox/posinput/internal/events"
	"github.com/holox/posinput/internal/hostbridge"
	"github.com/holox/posinput/internal/infrastructure/config"
	"github.com/holox/posinput/internal/infrastructure/database"
	"github.com/holox/posinput/internal/infrastructure/influxdb"
	"github.com/holox/posinput/internal/infrastructure/logging"
	"github.com/holox/posinput/internal/infrastructure/mqtt"
	"github.com/holox/posinput/internal/input"
	"github.com/holox/posinput/internal/process"
	"github.com/holox/posinput/internal/registry"
	"github.com/holox/posinput/internal/telemetry"
	"github.com/holox/posinput/internal/usb"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting POS input daemon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Consumer event stream
	dispatcher := events.NewDispatcher()
	dispatcher.SetLogger(log)
	defer dispatcher.Close()

	// Device registry. The prompter is a relay because the bridge that
	// actually issues prompts needs the registry to exist first.
	relay := &promptRelay{}
	deviceRegistry := registry.NewRegistry(relay, dispatcher)
	deviceRegistry.SetLogger(log)
	deviceRegistry.SetStore(registry.NewSQLiteStore(db.DB))
	defer deviceRegistry.Close()

	if restoreErr := deviceRegistry.RestoreGrants(ctx); restoreErr != nil {
		return fmt.Errorf("restoring permission grants: %w", restoreErr)
	}

	// Input pipeline: correlator resolves event sources to devices, the
	// router dispatches per role, and one buffer per role commits records.
	correlator := registry.NewCorrelator(deviceRegistry)
	correlator.SetLogger(log)

	router := input.NewRouter(correlator, deviceRegistry)
	router.SetLogger(log)

	keyboardBuf := input.NewBuffer(events.RoleKeyboard, dispatcher, cfg.GetInputTimeout())
	keyboardBuf.SetLogger(log)
	scannerBuf := input.NewBuffer(events.RoleScanner, dispatcher, cfg.GetInputTimeout())
	scannerBuf.SetLogger(log)

	router.SetHandler(events.RoleKeyboard, keyboardBuf)
	router.SetHandler(events.RoleScanner, scannerBuf)
	log.Info("input pipeline initialised", "idle_window", cfg.GetInputTimeout())

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Host agent supervision (optional). When unmanaged, the agent is
	// expected to be running already (systemd unit, platform service).
	if cfg.HostAgent.Managed {
		agent, agentErr := startHostAgent(ctx, cfg, log)
		if agentErr != nil {
			return fmt.Errorf("starting host agent: %w", agentErr)
		}
		defer func() {
			log.Info("stopping host agent")
			if stopErr := agent.Stop(); stopErr != nil {
				log.Error("error stopping host agent", "error", stopErr)
			}
		}()
	} else {
		log.Info("host agent unmanaged, expecting external process")
	}

	// Host bridge: subscribes to the agent's notifications and feeds the
	// registry and the key dispatch pipeline. It also serves permission
	// prompts, so wire it into the relay before any request can arrive.
	bridge := hostbridge.New(mqttClient, deviceRegistry, router, byte(cfg.MQTT.QoS))
	bridge.SetLogger(log)
	relay.set(bridge)

	if startErr := bridge.Start(); startErr != nil {
		return fmt.Errorf("starting host bridge: %w", startErr)
	}
	defer bridge.Stop()
	log.Info("host bridge started")

	// Mirror the consumer event stream onto the broker for off-till
	// consumers (back office dashboards, monitoring).
	mirror := hostbridge.NewMirror(mqttClient, dispatcher, byte(cfg.MQTT.QoS))
	mirror.SetLogger(log)
	mirror.Start()
	defer mirror.Stop()

	// Connect to InfluxDB (optional) and feed it from the event stream
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		recorder := telemetry.NewRecorder(cfg.Station.ID, influxClient, dispatcher)
		recorder.Start()
		defer recorder.Stop()
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start API server
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Registry: deviceRegistry,
		Events:   dispatcher,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"station", cfg.Station.ID,
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Stop the bridge before flushing: buffers are driven from its
	// dispatch goroutine and must be quiescent when flushed.
	bridge.Stop()
	keyboardBuf.Flush()
	scannerBuf.Flush()

	// Remaining teardown runs via the defer chain in reverse order.
	log.Info("POS input daemon stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses POSINPUT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("POSINPUT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startHostAgent launches the managed host agent subprocess.
func startHostAgent(ctx context.Context, cfg *config.Config, log *logging.Logger) (*process.Manager, error) {
	mgr := process.NewManager(process.Config{
		Name:               "host-agent",
		Binary:             cfg.HostAgent.Binary,
		Args:               cfg.HostAgent.Args,
		RestartOnFailure:   cfg.HostAgent.RestartOnFailure,
		RestartDelay:       time.Duration(cfg.HostAgent.RestartDelaySecs) * time.Second,
		MaxRestartAttempts: cfg.HostAgent.MaxRestartAttempt,
	})
	mgr.SetLogger(log)

	log.Info("starting host agent", "binary", cfg.HostAgent.Binary)
	if err := mgr.Start(ctx); err != nil {
		return nil, err
	}

	log.Info("host agent started", "pid", mgr.PID())
	return mgr, nil
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// promptRelay defers prompter resolution: the registry needs a prompter at
// construction, but the bridge that serves prompts needs the registry.
// set() is called once during startup, before the bridge subscribes, so no
// permission request can race it.
type promptRelay struct {
	bridge *hostbridge.Bridge
}

func (p *promptRelay) set(b *hostbridge.Bridge) {
	p.bridge = b
}

// PromptPermission implements registry.Prompter.
func (p *promptRelay) PromptPermission(desc usb.Descriptor) error {
	if p.bridge == nil {
		return hostbridge.ErrNotConnected
	}
	return p.bridge.PromptPermission(desc)
}
