package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/eds/edstest"
	"github.com/rassaifred/EOSFramework/relay"
	"github.com/rassaifred/EOSFramework/server"
	"github.com/rassaifred/EOSFramework/uvc"
)

var loglevel = new(slog.LevelVar)

var serverCmd = &cobra.Command{
	Use: "eoscam",
	Run: func(cmd *cobra.Command, args []string) {
		if err := entrypoint(); err != nil {
			slog.Error("entrypoint error", "err", err)
			os.Exit(1)
		}
	},
}

func initConfig() {
	viper.SetDefault("port", 8080)
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("device.backend", "uvc")
	viper.SetDefault("device.path", "/dev/video0")
	viper.SetDefault("device.spoolDir", "~/captures/")
	viper.SetDefault("device.previewWidth", 640)
	viper.SetDefault("session.openOnStart", true)

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.ReadInConfig()
}

func entrypoint() error {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: loglevel,
	}))

	cfg := getConfig()
	setLogLevel(cfg.LogLevel)
	log.Info("Starting service", "addr", cfg.Addr, "loglevel", cfg.LogLevel)

	sdk, ref, port, desc, err := newBackend(log)
	if err != nil {
		return fmt.Errorf("fail to create backend: %w", err)
	}

	cam := camera.New(log, sdk, ref, port, desc)
	defer cam.Release()

	if viper.GetBool("session.openOnStart") {
		if err := cam.OpenSession(); err != nil {
			return fmt.Errorf("fail to open session: %w", err)
		}
	}

	srv, err := server.NewServer(log, cfg, cam)
	if err != nil {
		return fmt.Errorf("fail to create server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("fail to listen: %w", err)
	}

	return nil
}

func newBackend(log *slog.Logger) (sdk eds.SDK, ref eds.CameraRef, port, desc string, err error) {
	switch backend := viper.GetString("device.backend"); backend {
	case "uvc":
		device := viper.GetString("device.path")
		b := uvc.New(log, uvc.Config{
			Device:       device,
			SpoolDir:     expandHome(viper.GetString("device.spoolDir")),
			PreviewWidth: viper.GetInt("device.previewWidth"),
		})
		return b, uvc.Ref, device, "UVC camera", nil
	case "sim":
		return edstest.NewSim(), edstest.Ref, "sim:0", "Simulated Camera", nil
	default:
		return nil, 0, "", "", fmt.Errorf("unknown backend %q", backend)
	}
}

func getConfig() *server.Config {
	return &server.Config{
		Addr:     fmt.Sprintf(":%d", viper.GetInt("port")),
		LogLevel: viper.GetString("loglevel"),

		RelayEnabled: viper.GetBool("relay.enabled"),
		Relay: relay.Config{
			Endpoint: viper.GetString("relay.endpoint"),
			Username: viper.GetString("relay.username"),
			Token:    viper.GetString("relay.token"),
		},
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

func setLogLevel(level string) {
	level = strings.ToLower(level)
	switch level {
	case "debug":
		loglevel.Set(slog.LevelDebug)
	case "info":
		loglevel.Set(slog.LevelInfo)
	case "warn":
		loglevel.Set(slog.LevelWarn)
	case "error":
		loglevel.Set(slog.LevelError)
	default:
		slog.Warn("setLogLevel", "unknown log level %s, using INFO instead", level)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	serverCmd.Flags().IntP("port", "p", 8080, "Listen port")
	viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
	serverCmd.Flags().StringP("device", "d", "/dev/video0", "Video device path")
	viper.BindPFlag("device.path", serverCmd.Flags().Lookup("device"))
	serverCmd.Flags().StringP("backend", "b", "uvc", "Device backend (uvc or sim)")
	viper.BindPFlag("device.backend", serverCmd.Flags().Lookup("backend"))
	serverCmd.Flags().BoolP("relay", "r", false, "Relay integration enabled")
	viper.BindPFlag("relay.enabled", serverCmd.Flags().Lookup("relay"))
}

func main() {
	serverCmd.Execute()
}
