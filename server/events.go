package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/relay"
	"github.com/rassaifred/EOSFramework/storage"
)

// broadcaster distributes camera events to SSE subscribers.
type broadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{clients: make(map[chan string]struct{})}
}

// subscribe returns an event channel and a cleanup function the caller must
// invoke on disconnect.
func (b *broadcaster) subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// broadcast fans an event out to all subscribers. Non-blocking; slow clients
// miss events rather than stalling delivery.
func (b *broadcaster) broadcast(ev relay.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
		}
	}
}

// The server is the camera's delegate; every notification is broadcast to
// SSE clients and, when configured, queued on the relay.

func (srv *server) publish(ev relay.Event) {
	srv.events.broadcast(ev)
	if srv.relay != nil {
		srv.relay.Enqueue(ev)
	}
}

func (srv *server) CameraPropertyChanged(c *camera.Camera, prop eds.PropertyID) {
	srv.publish(relay.Event{
		Kind:     "property-changed",
		Camera:   c.Description(),
		Port:     c.Port(),
		Property: uint32(prop),
	})
}

func (srv *server) CameraSupportedValuesChanged(c *camera.Camera, prop eds.PropertyID) {
	srv.publish(relay.Event{
		Kind:     "supported-values-changed",
		Camera:   c.Description(),
		Port:     c.Port(),
		Property: uint32(prop),
	})
}

func (srv *server) CameraFileCreated(c *camera.Camera, f *storage.File) {
	srv.publish(relay.Event{
		Kind:   "file-created",
		Camera: c.Description(),
		Port:   c.Port(),
		File:   f.Name(),
		Size:   f.Size(),
	})
}

func (srv *server) CameraFileRemoved(c *camera.Camera, f *storage.File) {
	srv.publish(relay.Event{
		Kind:   "file-removed",
		Camera: c.Description(),
		Port:   c.Port(),
		File:   f.Name(),
	})
}

func (srv *server) CameraDisconnected(c *camera.Camera) {
	srv.publish(relay.Event{
		Kind:   "disconnected",
		Camera: c.Description(),
		Port:   c.Port(),
	})
}

// Events streams camera notifications as server-sent events.
func (srv *server) Events(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch, unsub := srv.events.subscribe()
	defer unsub()

	srv.log.Debug("sse client connected")
	ctx := req.Context()
	for {
		select {
		case <-ctx.Done():
			srv.log.Debug("sse client gone")
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
