// Package server exposes one camera over HTTP: session control, properties,
// commands, state, volumes and a server-sent-events stream of the camera's
// notifications. The server registers itself as the camera delegate and fans
// notifications out to SSE subscribers and the optional relay.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/relay"
)

type Server interface {
	Start() error
}

type server struct {
	log *slog.Logger
	cfg *Config

	addr   string
	cam    *camera.Camera
	relay  *relay.Relay
	events *broadcaster
}

type Config struct {
	Addr     string
	LogLevel string

	RelayEnabled bool
	Relay        relay.Config
}

// NewServer wires the camera to the HTTP surface. When the relay is enabled
// its client is created here, mirroring how the rest of the stack is owned
// top-down.
func NewServer(log *slog.Logger, cfg *Config, cam *camera.Camera) (Server, error) {
	if log == nil {
		log = slog.Default()
	}

	srv := &server{
		log: log.With("svc", "server"),
		cfg: cfg,

		addr:   cfg.Addr,
		cam:    cam,
		events: newBroadcaster(),
	}

	if cfg.RelayEnabled {
		r, err := relay.New(log, &cfg.Relay)
		if err != nil {
			return nil, fmt.Errorf("fail to create relay: %w", err)
		}
		srv.relay = r
		srv.log.Info("relay enabled", "endpoint", cfg.Relay.Endpoint)
	}

	cam.SetDelegate(srv)
	return srv, nil
}

func (srv *server) Start() error {
	return http.ListenAndServe(srv.addr, srv.handler())
}

func (srv *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", srv.Status)
	mux.HandleFunc("POST /session/open", srv.OpenSession)
	mux.HandleFunc("POST /session/close", srv.CloseSession)
	mux.HandleFunc("GET /property", srv.GetProperty)
	mux.HandleFunc("POST /property", srv.SetProperty)
	mux.HandleFunc("GET /property/supported", srv.SupportedValues)
	mux.HandleFunc("POST /command", srv.SendCommand)
	mux.HandleFunc("POST /state", srv.SetState)
	mux.HandleFunc("GET /volumes", srv.Volumes)
	mux.HandleFunc("GET /events", srv.Events)

	return mux
}
