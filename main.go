package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/csinode/cmd"
	"github.com/smazurov/csinode/internal/api"
	"github.com/smazurov/csinode/internal/camera"
	"github.com/smazurov/csinode/internal/command"
	"github.com/smazurov/csinode/internal/config"
	"github.com/smazurov/csinode/internal/events"
	"github.com/smazurov/csinode/internal/logging"
	"github.com/smazurov/csinode/internal/metrics"
	"github.com/smazurov/csinode/internal/netlink"
	"github.com/smazurov/csinode/internal/scheduler"
	"github.com/smazurov/csinode/internal/systemd"
	"github.com/smazurov/csinode/internal/telemetry"
	"github.com/smazurov/csinode/internal/transport"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Collector settings
	CollectorURI string `help:"Collector WebSocket URI" default:"ws://192.168.4.1:8000/ws" toml:"collector.uri" env:"COLLECTOR_URI"`

	// Network settings
	NetworkInterface string `help:"Network interface to supervise" default:"wlan0" toml:"network.interface" env:"NETWORK_INTERFACE"`

	// Camera settings
	CameraFramesDir string `help:"Directory of JPEG frames to stream" default:"frames" toml:"camera.frames_dir" env:"CAMERA_FRAMES_DIR"`

	// Telemetry settings
	TelemetrySimIntervalMs int `help:"Simulated capture interval in milliseconds (0 disables the feeder)" default:"100" toml:"telemetry.sim_interval_ms" env:"TELEMETRY_SIM_INTERVAL_MS"`

	// API settings
	APIEnabled bool   `help:"Enable the local status API" default:"true" toml:"api.enabled" env:"API_ENABLED"`
	APIPort    string `help:"Status API listen address" default:":8090" toml:"api.port" env:"API_PORT"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingNetlink   string `help:"Network supervisor logging level" default:"info" toml:"logging.netlink" env:"LOGGING_NETLINK"`
	LoggingTransport string `help:"Transport logging level" default:"info" toml:"logging.transport" env:"LOGGING_TRANSPORT"`
	LoggingTelemetry string `help:"Telemetry logging level" default:"info" toml:"logging.telemetry" env:"LOGGING_TELEMETRY"`
	LoggingCommand   string `help:"Command processor logging level" default:"info" toml:"logging.command" env:"LOGGING_COMMAND"`
	LoggingScheduler string `help:"Stream scheduler logging level" default:"info" toml:"logging.scheduler" env:"LOGGING_SCHEDULER"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"netlink":   opts.LoggingNetlink,
				"transport": opts.LoggingTransport,
				"telemetry": opts.LoggingTelemetry,
				"command":   opts.LoggingCommand,
				"scheduler": opts.LoggingScheduler,
				"api":       opts.LoggingAPI,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		eventBus := events.New()
		recorder := events.NewRecorder(eventBus, 32)

		// Camera sensor with defaults from the config file. Missing
		// config is fine, the sensor starts at zero values.
		sensorParams, settingsErr := camera.LoadSettings(opts.Config)
		if settingsErr != nil {
			logger.Warn("Camera settings not loaded, using defaults", "error", settingsErr)
		}
		sensor := camera.NewSimSensor(sensorParams)

		// Hot-reload camera parameters when the config file changes.
		settingsWatcher := config.NewWatcher(
			opts.Config,
			camera.LoadSettings,
			logging.GetLogger("camera"),
		)
		settingsWatcher.OnReload(func(p camera.Params) {
			logger.Info("Applying reloaded camera settings")
			sensor.Apply(p)
		})

		frames, framesErr := camera.NewFileSource(opts.CameraFramesDir)
		if framesErr != nil {
			logger.Error("Failed to open frame source", "dir", opts.CameraFramesDir, "error", framesErr)
			os.Exit(1)
		}

		buffer := telemetry.NewBuffer()

		assoc := netlink.NewIfaceAssociator(opts.NetworkInterface, logging.GetLogger("netlink"))
		supervisor := netlink.NewSupervisor(assoc, eventBus, logging.GetLogger("netlink"))

		link := transport.NewLink(opts.CollectorURI, logging.GetLogger("transport"))

		processor := command.NewProcessor(
			func() camera.Sensor { return sensor },
			link,
			eventBus,
			logging.GetLogger("command"),
		)

		sched := scheduler.New(
			supervisor.State,
			link,
			frames,
			buffer,
			logging.GetLogger("scheduler"),
		)

		var apiServer *api.Server
		if opts.APIEnabled {
			apiServer = api.NewServer(&api.Options{
				LinkState:         supervisor.State,
				SessionConnected:  link.IsConnected,
				Sensor:            func() camera.Sensor { return sensor },
				RecentEvents:      recorder.Recent,
				PrometheusHandler: promhttp.Handler(),
			})
		}

		runCtx, cancelRun := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			logger.Info("Starting network supervisor", "interface", opts.NetworkInterface)
			if startErr := supervisor.Start(runCtx); startErr != nil {
				logger.Error("Network never came up, giving up", "error", startErr)
				os.Exit(1)
			}

			logger.Info("Connecting to collector", "uri", opts.CollectorURI)
			if connErr := link.Connect(runCtx); connErr != nil {
				logger.Error("Failed to reach collector", "error", connErr)
				os.Exit(1)
			}

			// Route inbound session traffic. Text payloads are camera
			// commands; binary inbound traffic is not part of the
			// protocol and gets dropped.
			go func() {
				for ev := range link.Events() {
					switch ev.Kind {
					case transport.EventData:
						if ev.Opcode == transport.OpText {
							processor.Handle(ev.Payload)
						} else {
							logger.Debug("Dropping unexpected binary payload", "bytes", len(ev.Payload))
						}
					case transport.EventDisconnected:
						logger.Warn("Collector session lost", "code", ev.Code)
						eventBus.Publish(events.SessionLostEvent{
							Reason:    "connection closed",
							Timestamp: time.Now().UTC().Format(time.RFC3339),
						})
					case transport.EventError:
						logger.Error("Session error", "error", ev.Err)
					case transport.EventConnected:
						logger.Info("Collector session established")
					}
				}
			}()

			if watchErr := settingsWatcher.Start(); watchErr != nil {
				logger.Warn("Camera settings watcher not started", "error", watchErr)
			}

			if opts.TelemetrySimIntervalMs > 0 {
				feeder := telemetry.NewSimFeeder(
					buffer,
					time.Duration(opts.TelemetrySimIntervalMs)*time.Millisecond,
					func() {
						metrics.IncrementTelemetryDropped("contention")
						eventBus.Publish(events.TelemetryDroppedEvent{
							Timestamp: time.Now().UTC().Format(time.RFC3339),
						})
					},
					logging.GetLogger("telemetry"),
				)
				go feeder.Run(runCtx)
			}

			go sched.Run(runCtx)

			if apiServer != nil {
				go func() {
					logger.Info("Starting status API", "addr", opts.APIPort)
					if apiErr := apiServer.Start(opts.APIPort); apiErr != nil && !errors.Is(apiErr, http.ErrServerClosed) {
						logger.Error("Status API failed", "error", apiErr)
					}
				}()
			}

			systemd.NotifyReady(logger)
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			systemd.NotifyStopping(logger)
			cancelRun()

			if apiServer != nil {
				if stopErr := apiServer.Stop(); stopErr != nil {
					logger.Error("Error stopping status API", "error", stopErr)
				}
			}
			if stopErr := settingsWatcher.Stop(); stopErr != nil {
				logger.Error("Error stopping settings watcher", "error", stopErr)
			}
			if closeErr := link.Close(); closeErr != nil {
				logger.Error("Error closing collector session", "error", closeErr)
			}
			supervisor.Stop()
			recorder.Close()
		})
	})

	cli.Root().AddCommand(cmd.CreateCheckCmd())

	cli.Run()
}
