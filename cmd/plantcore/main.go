// plantcore - Plant Telemetry and Irrigation Platform
//
// This is the main entry point for the plantcore service. plantcore ingests
// sensor readings from potted-plant devices over MQTT, quality-checks and
// evaluates them against per-plant thresholds, persists them, fans them out
// to dashboard clients over WebSocket, and reacts to critical conditions
// with irrigation commands and email alerts.
//
// For architecture details, see the package documentation under internal/.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	_ "github.com/verdano/plantcore/migrations"

	"github.com/verdano/plantcore/internal/actuator"
	"github.com/verdano/plantcore/internal/alert"
	"github.com/verdano/plantcore/internal/api"
	"github.com/verdano/plantcore/internal/device"
	"github.com/verdano/plantcore/internal/infrastructure/config"
	"github.com/verdano/plantcore/internal/infrastructure/database"
	"github.com/verdano/plantcore/internal/infrastructure/influxdb"
	"github.com/verdano/plantcore/internal/infrastructure/logging"
	"github.com/verdano/plantcore/internal/infrastructure/mqtt"
	"github.com/verdano/plantcore/internal/notify"
	"github.com/verdano/plantcore/internal/observability/metrics"
	"github.com/verdano/plantcore/internal/telemetry"
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
	log.Info("starting plantcore",
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

	// Initialise plant device registry
	deviceRepo := device.NewSQLiteRepository(db.DB)
	deviceRegistry := device.NewRegistry(deviceRepo)
	deviceRegistry.SetLogger(log)

	if refreshErr := deviceRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", deviceRegistry.DeviceCount())

	// Connect to MQTT broker with exponential backoff. Telemetry is the
	// entire input of the service, so we retry rather than fail fast when
	// the broker comes up after us.
	mqttClient, err := connectMQTT(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Alert persistence
	alertRepo := alert.NewSQLiteRepository(db.DB)

	// Email transport (optional)
	var mailer *notify.Mailer
	if cfg.Notify.Enabled {
		mailer = notify.NewMailer(cfg.SMTP)
		mailer.SetLogger(log)
		log.Info("email notifications enabled", "smtp_host", cfg.SMTP.Host)
	} else {
		log.Info("email notifications disabled")
	}

	// Actuation dispatcher
	dispatcher := actuator.NewDispatcher(mqttClient)

	// Register Prometheus collectors before anything increments them
	metrics.Init()

	// Latest-reading cache, shared between the pipeline and the REST API
	latest := telemetry.NewLatestCache()

	// HTTP API server (created before the pipeline so its WebSocket hub can
	// be wired in as the pipeline's broadcast sink)
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Registry:   deviceRegistry,
		Alerts:     alertRepo,
		Latest:     latest,
		Dispatcher: dispatcher,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Telemetry pipeline
	pipelineDeps := telemetry.Deps{
		Devices:       deviceRegistry,
		Alerts:        alertRepo,
		Hub:           server.Hub(),
		Commands:      dispatcher,
		Advisor:       telemetry.NewAdvisor(cfg.Thresholds),
		Cooldown:      telemetry.NewCooldown(cfg.Cooldown()),
		Latest:        latest,
		FallbackEmail: cfg.Notify.FallbackAddress,
		SenderEmail:   cfg.SMTP.From,
	}
	// Assign through the concrete types only when present: a nil *Client in
	// a non-nil interface would defeat the pipeline's nil checks.
	if influxClient != nil {
		pipelineDeps.TimeSeries = influxClient
	}
	if mailer != nil {
		pipelineDeps.Mailer = mailer
	}
	pipeline := telemetry.NewPipeline(pipelineDeps)
	pipeline.SetLogger(log)
	defer func() {
		log.Info("draining telemetry pipeline")
		pipeline.Wait()
	}()

	// Subscribe to the plant telemetry topics
	gateway := telemetry.NewGateway(mqttClient, pipeline, byte(cfg.MQTT.QoS))
	gateway.SetLogger(log)
	if startErr := gateway.Start(); startErr != nil {
		return fmt.Errorf("starting telemetry gateway: %w", startErr)
	}
	log.Info("telemetry gateway started", "qos", cfg.MQTT.QoS)

	// Start the HTTP API server
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server (stops accepting readings for broadcast)
	// 2. Pipeline drain (in-flight side effects complete)
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("plantcore stopped")
	return nil
}

// connectMQTT dials the broker, retrying with exponential backoff according
// to the reconnect settings. The paho client handles reconnects after the
// first successful connect; this covers the window where plantcore starts
// before the broker does.
func connectMQTT(ctx context.Context, cfg *config.Config, log *logging.Logger) (*mqtt.Client, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Duration(cfg.MQTT.Reconnect.InitialDelay) * time.Second
	policy.MaxInterval = time.Duration(cfg.MQTT.Reconnect.MaxDelay) * time.Second
	policy.MaxElapsedTime = 0

	var wrapped backoff.BackOff = backoff.WithContext(policy, ctx)
	if cfg.MQTT.Reconnect.MaxAttempts > 0 {
		wrapped = backoff.WithMaxRetries(wrapped, uint64(cfg.MQTT.Reconnect.MaxAttempts))
	}

	var client *mqtt.Client
	err := backoff.RetryNotify(
		func() error {
			var connectErr error
			client, connectErr = mqtt.Connect(cfg.MQTT)
			return connectErr
		},
		wrapped,
		func(err error, next time.Duration) {
			log.Warn("MQTT connect failed, retrying",
				"error", err,
				"next_attempt_in", next,
			)
		},
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// getConfigPath returns the configuration file path.
// Uses PLANTCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PLANTCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
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

	// The API server's own health endpoint reports liveness to callers; the
	// gateway surfaces subscription failures at Start().

	return nil
}
