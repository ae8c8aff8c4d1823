package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/smazurov/csinode/internal/camera"
	"github.com/smazurov/csinode/internal/logging"
)

// CreateCheckCmd creates the check command.
func CreateCheckCmd() *cobra.Command {
	var configFile string
	var collectorURI string
	var probeTimeout time.Duration
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and collector reachability",
		Long: `Loads the configuration file, validates the camera parameter defaults and ` +
			`attempts a single WebSocket dial to the collector endpoint. Exits non-zero if ` +
			`any check fails.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("check")

			failed := false

			params, err := camera.LoadSettings(configFile)
			if err != nil {
				logger.Error("Configuration file failed to load", "config", configFile, "error", err)
				failed = true
			} else {
				logger.Info("Configuration file OK", "config", configFile)
				clamped := camera.NewSimSensor(params)
				if clamped.Status() != params {
					logger.Warn("Camera settings outside sensor ranges, they will be clamped",
						"configured", fmt.Sprintf("%+v", params),
						"effective", fmt.Sprintf("%+v", clamped.Status()))
				}
				logger.Info("Camera settings OK", "params", fmt.Sprintf("%+v", params))
			}

			if collectorURI != "" {
				ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
				conn, _, dialErr := websocket.DefaultDialer.DialContext(ctx, collectorURI, nil)
				cancel()
				if dialErr != nil {
					logger.Error("Collector unreachable", "uri", collectorURI, "error", dialErr)
					failed = true
				} else {
					conn.Close()
					logger.Info("Collector reachable", "uri", collectorURI)
				}
			}

			if failed {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.toml", "Path to configuration file")
	cmd.Flags().StringVar(&collectorURI, "collector-uri", "", "Collector WebSocket URI to probe (skipped when empty)")
	cmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Second, "Collector probe timeout")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}
