// Package relay pushes camera notifications to a remote collector over HTTP.
// It implements the camera observer interfaces, queueing each notification
// and delivering it from a background sender, so slow networks never stall
// the vendor's callback context.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/icholy/digest"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/storage"
)

// Config points the relay at its collector endpoint. Username and Token are
// the digest auth credentials; empty means unauthenticated.
type Config struct {
	Endpoint string
	Username string
	Token    string
}

// Event is the JSON payload for one camera notification.
type Event struct {
	Kind     string    `json:"kind"`
	Camera   string    `json:"camera"`
	Port     string    `json:"port"`
	File     string    `json:"file,omitempty"`
	Size     uint64    `json:"size,omitempty"`
	Property uint32    `json:"property,omitempty"`
	Time     time.Time `json:"time"`
}

// Relay forwards camera events to the configured endpoint. Register it as the
// camera delegate, or feed it through Enqueue.
type Relay struct {
	log *slog.Logger
	cfg *Config

	httpClient *http.Client
	queue      chan Event
	done       chan struct{}
}

// New creates a relay and starts its sender. Call Close to stop it.
func New(log *slog.Logger, cfg *Config) (*Relay, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("config endpoint is empty")
	}
	if log == nil {
		log = slog.Default()
	}

	cli := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &digest.Transport{
			Username: cfg.Username,
			Password: cfg.Token,
		},
	}

	r := &Relay{
		log:        log.With("svc", "relay"),
		cfg:        cfg,
		httpClient: cli,
		queue:      make(chan Event, 64),
		done:       make(chan struct{}),
	}
	go r.sender()
	return r, nil
}

// Close stops the sender. Events still queued are dropped.
func (r *Relay) Close() {
	close(r.done)
}

// Enqueue queues an event for delivery. Never blocks; when the queue is full
// the event is dropped and logged.
func (r *Relay) Enqueue(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case r.queue <- ev:
	default:
		r.log.Warn("queue full, dropping event", "kind", ev.Kind)
	}
}

func (r *Relay) CameraPropertyChanged(c *camera.Camera, prop eds.PropertyID) {
	r.Enqueue(Event{
		Kind:     "property-changed",
		Camera:   c.Description(),
		Port:     c.Port(),
		Property: uint32(prop),
	})
}

func (r *Relay) CameraFileCreated(c *camera.Camera, f *storage.File) {
	r.Enqueue(Event{
		Kind:   "file-created",
		Camera: c.Description(),
		Port:   c.Port(),
		File:   f.Name(),
		Size:   f.Size(),
	})
}

func (r *Relay) CameraFileRemoved(c *camera.Camera, f *storage.File) {
	r.Enqueue(Event{
		Kind:   "file-removed",
		Camera: c.Description(),
		Port:   c.Port(),
		File:   f.Name(),
	})
}

func (r *Relay) CameraDisconnected(c *camera.Camera) {
	r.Enqueue(Event{
		Kind:   "disconnected",
		Camera: c.Description(),
		Port:   c.Port(),
	})
}

func (r *Relay) sender() {
	for {
		select {
		case <-r.done:
			return
		case ev := <-r.queue:
			if err := r.send(ev); err != nil {
				r.log.Error("send event", "kind", ev.Kind, "err", err)
			}
		}
	}
}

func (r *Relay) send(ev Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("fail to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fail to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fail to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("response status code %d: %s", resp.StatusCode, string(data))
	}

	r.log.Debug("event sent", "kind", ev.Kind, "status", resp.StatusCode)
	return nil
}
