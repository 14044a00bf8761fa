package server

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/eds/edstest"
)

func newTestServer(t *testing.T) (*httptest.Server, *camera.Camera, *edstest.Sim) {
	t.Helper()
	sim := edstest.NewSim()
	cam := camera.New(nil, sim, edstest.Ref, "usb:001", "Test Camera")

	s, err := NewServer(nil, &Config{Addr: ":0"}, cam)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ts := httptest.NewServer(s.(*server).handler())
	t.Cleanup(ts.Close)
	return ts, cam, sim
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	resp.Body.Close()
	return resp
}

func TestStatusAndSessionLifecycle(t *testing.T) {
	ts, _, _ := newTestServer(t)

	var status statusResponse
	getJSON(t, ts.URL+"/status", &status)
	if status.Open || status.Port != "usb:001" || status.State != "default" {
		t.Errorf("initial status = %+v", status)
	}

	if resp := postJSON(t, ts.URL+"/session/open", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("open session: status %d", resp.StatusCode)
	}

	getJSON(t, ts.URL+"/status", &status)
	if !status.Open {
		t.Error("status.Open = false after open")
	}

	// opening twice conflicts
	if resp := postJSON(t, ts.URL+"/session/open", ""); resp.StatusCode != http.StatusConflict {
		t.Errorf("double open: status %d, want 409", resp.StatusCode)
	}

	if resp := postJSON(t, ts.URL+"/session/close", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("close session: status %d", resp.StatusCode)
	}
	if resp := postJSON(t, ts.URL+"/session/close", ""); resp.StatusCode != http.StatusConflict {
		t.Errorf("double close: status %d, want 409", resp.StatusCode)
	}
}

func TestPropertyEndpoints(t *testing.T) {
	ts, cam, _ := newTestServer(t)

	// closed session gates the HTTP surface too
	if resp := getJSON(t, ts.URL+"/property?id=0x0407", nil); resp.StatusCode != http.StatusConflict {
		t.Errorf("get property on closed session: status %d, want 409", resp.StatusCode)
	}

	if err := cam.OpenSession(); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	var prop propertyResponse
	getJSON(t, ts.URL+"/property?id=0x0407", &prop)
	if prop.Int == nil || *prop.Int != 100 {
		t.Errorf("ISO = %+v, want 100", prop)
	}

	if resp := postJSON(t, ts.URL+"/property", `{"id":1031,"int":400}`); resp.StatusCode != http.StatusNoContent {
		t.Errorf("set property: status %d", resp.StatusCode)
	}
	getJSON(t, ts.URL+"/property?id=1031", &prop)
	if prop.Int == nil || *prop.Int != 400 {
		t.Errorf("ISO after set = %+v, want 400", prop)
	}

	// value outside the supported list is rejected, not a server error
	if resp := postJSON(t, ts.URL+"/property", `{"id":1031,"int":125}`); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("rejected set: status %d, want 422", resp.StatusCode)
	}

	var values []propertyResponse
	getJSON(t, ts.URL+"/property/supported?id=0x0407", &values)
	if len(values) != 5 || values[0].Int == nil || *values[0].Int != 100 {
		t.Errorf("supported values = %+v", values)
	}
}

func TestCommandAndStateEndpoints(t *testing.T) {
	ts, cam, sim := newTestServer(t)
	if err := cam.OpenSession(); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	sim.Reset()

	if resp := postJSON(t, ts.URL+"/command", `{"command":0}`); resp.StatusCode != http.StatusNoContent {
		t.Errorf("take picture: status %d", resp.StatusCode)
	}
	if resp := postJSON(t, ts.URL+"/command", `{"command":4,"param":1}`); resp.StatusCode != http.StatusNoContent {
		t.Errorf("press shutter: status %d", resp.StatusCode)
	}

	calls := sim.CallsTo("SendCommand")
	if len(calls) != 2 {
		t.Fatalf("got %d vendor commands, want 2", len(calls))
	}
	if calls[1].Args[0] != eds.CommandPressShutterButton || calls[1].Args[1] != int64(1) {
		t.Errorf("second command = %v", calls[1])
	}

	if resp := postJSON(t, ts.URL+"/state", `{"state":"ui-locked"}`); resp.StatusCode != http.StatusOK {
		t.Errorf("set state: status %d", resp.StatusCode)
	}
	if got := cam.State(); got != camera.StateUILocked {
		t.Errorf("state = %v, want ui-locked", got)
	}
	if resp := postJSON(t, ts.URL+"/state", `{"state":"sideways"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad state: status %d, want 400", resp.StatusCode)
	}
}

func TestVolumesEndpoint(t *testing.T) {
	ts, cam, sim := newTestServer(t)
	if err := cam.OpenSession(); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	sim.SetVolumes([]eds.VolumeInfo{
		{Ref: 100, Label: "SD1", Capacity: 64, Free: 32},
		{Ref: 101, Label: "CF1"},
	})

	var volumes []volumeResponse
	getJSON(t, ts.URL+"/volumes", &volumes)
	if len(volumes) != 2 || volumes[0].Label != "SD1" || volumes[1].Label != "CF1" {
		t.Errorf("volumes = %+v", volumes)
	}
}

func TestEventsStream(t *testing.T) {
	ts, cam, sim := newTestServer(t)
	if err := cam.OpenSession(); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	resp, err := http.Get(ts.URL + "/events")
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
			}
		}
	}()

	// give the SSE subscriber a moment to register before emitting
	time.Sleep(50 * time.Millisecond)
	sim.EmitFileCreated(eds.FileInfo{Ref: 9, Name: "IMG_0042.JPG", Size: 512})

	select {
	case payload := <-lines:
		if !strings.Contains(payload, `"file-created"`) || !strings.Contains(payload, "IMG_0042.JPG") {
			t.Errorf("sse payload = %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sse event")
	}
}
