package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/eds/edstest"
	"github.com/rassaifred/EOSFramework/storage"
)

func TestRelayDeliversEvents(t *testing.T) {
	received := make(chan Event, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var ev Event
		if err := json.NewDecoder(req.Body).Decode(&ev); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r, err := New(nil, &Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	cam := camera.New(nil, edstest.NewSim(), edstest.Ref, "usb:001", "Test Camera")
	file := storage.NewFile(eds.FileInfo{Ref: 7, Name: "IMG_0001.CR2", Size: 2048})

	r.CameraFileCreated(cam, file)
	r.CameraDisconnected(cam)

	ev := waitForEvent(t, received)
	if ev.Kind != "file-created" || ev.File != "IMG_0001.CR2" || ev.Size != 2048 {
		t.Errorf("first event = %+v", ev)
	}
	if ev.Port != "usb:001" || ev.Camera != "Test Camera" {
		t.Errorf("event identity = %+v", ev)
	}
	if ev.Time.IsZero() {
		t.Error("event time not set")
	}

	ev = waitForEvent(t, received)
	if ev.Kind != "disconnected" {
		t.Errorf("second event = %+v", ev)
	}
}

func TestRelayRequiresEndpoint(t *testing.T) {
	if _, err := New(nil, &Config{}); err == nil {
		t.Error("New with empty endpoint succeeded")
	}
	if _, err := New(nil, nil); err == nil {
		t.Error("New with nil config succeeded")
	}
}

func waitForEvent(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
