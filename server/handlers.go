package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rassaifred/EOSFramework/camera"
	"github.com/rassaifred/EOSFramework/eds"
)

type statusResponse struct {
	Port        string `json:"port"`
	Description string `json:"description"`
	Open        bool   `json:"open"`
	State       string `json:"state"`
}

type propertyResponse struct {
	ID  uint32  `json:"id"`
	Int *int64  `json:"int,omitempty"`
	Str *string `json:"string,omitempty"`
}

type setPropertyRequest struct {
	ID  uint32  `json:"id"`
	Int *int64  `json:"int,omitempty"`
	Str *string `json:"string,omitempty"`
}

type commandRequest struct {
	Command uint32 `json:"command"`
	Param   *int64 `json:"param,omitempty"`
}

type stateRequest struct {
	State string `json:"state"`
}

type volumeResponse struct {
	Label    string `json:"label"`
	Capacity uint64 `json:"capacity"`
	Free     uint64 `json:"free"`
	ReadOnly bool   `json:"readOnly"`
}

func (srv *server) Status(w http.ResponseWriter, req *http.Request) {
	srv.writeJSON(w, http.StatusOK, statusResponse{
		Port:        srv.cam.Port(),
		Description: srv.cam.Description(),
		Open:        srv.cam.IsOpen(),
		State:       srv.cam.State().String(),
	})
}

func (srv *server) OpenSession(w http.ResponseWriter, req *http.Request) {
	if err := srv.cam.OpenSession(); err != nil {
		srv.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *server) CloseSession(w http.ResponseWriter, req *http.Request) {
	if err := srv.cam.CloseSession(); err != nil {
		srv.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *server) GetProperty(w http.ResponseWriter, req *http.Request) {
	prop, ok := parsePropertyID(w, req.URL.Query().Get("id"))
	if !ok {
		return
	}

	value, err := srv.cam.Property(prop)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	srv.writeJSON(w, http.StatusOK, propertyJSON(prop, value))
}

func (srv *server) SetProperty(w http.ResponseWriter, req *http.Request) {
	var body setPropertyRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var value eds.PropertyValue
	switch {
	case body.Int != nil:
		value = eds.IntValue(*body.Int)
	case body.Str != nil:
		value = eds.StringValue(*body.Str)
	default:
		http.Error(w, "missing int or string value", http.StatusBadRequest)
		return
	}

	if err := srv.cam.SetProperty(eds.PropertyID(body.ID), value); err != nil {
		srv.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *server) SupportedValues(w http.ResponseWriter, req *http.Request) {
	prop, ok := parsePropertyID(w, req.URL.Query().Get("id"))
	if !ok {
		return
	}

	values, err := srv.cam.SupportedValues(prop)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	out := make([]propertyResponse, 0, len(values))
	for _, v := range values {
		out = append(out, propertyJSON(prop, v))
	}
	srv.writeJSON(w, http.StatusOK, out)
}

func (srv *server) SendCommand(w http.ResponseWriter, req *http.Request) {
	var body commandRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	if body.Param != nil {
		err = srv.cam.SendCommandWithParam(eds.Command(body.Command), *body.Param)
	} else {
		err = srv.cam.SendCommand(eds.Command(body.Command))
	}
	if err != nil {
		srv.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (srv *server) SetState(w http.ResponseWriter, req *http.Request) {
	var body stateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, ok := parseState(body.State)
	if !ok {
		http.Error(w, "unknown state "+body.State, http.StatusBadRequest)
		return
	}

	if err := srv.cam.SetState(state); err != nil {
		srv.writeError(w, err)
		return
	}
	srv.writeJSON(w, http.StatusOK, map[string]string{"state": srv.cam.State().String()})
}

func (srv *server) Volumes(w http.ResponseWriter, req *http.Request) {
	volumes := srv.cam.Volumes()
	out := make([]volumeResponse, 0, len(volumes))
	for _, v := range volumes {
		out = append(out, volumeResponse{
			Label:    v.Label(),
			Capacity: v.Capacity(),
			Free:     v.Free(),
			ReadOnly: v.ReadOnly(),
		})
	}
	srv.writeJSON(w, http.StatusOK, out)
}

func (srv *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		srv.log.Error("write response", "err", err)
	}
}

// writeError maps the camera error taxonomy onto HTTP statuses.
func (srv *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var cerr *camera.Error
	if errors.As(err, &cerr) {
		switch cerr.Kind {
		case camera.KindSessionNotOpen, camera.KindSessionAlreadyOpen:
			status = http.StatusConflict
		case camera.KindInvalidIndex:
			status = http.StatusNotFound
		case camera.KindUnsupportedProperty:
			status = http.StatusBadRequest
		case camera.KindValueRejected:
			status = http.StatusUnprocessableEntity
		case camera.KindVendorFailure, camera.KindDisconnected:
			status = http.StatusBadGateway
		}
	}
	http.Error(w, err.Error(), status)
}

func propertyJSON(prop eds.PropertyID, value eds.PropertyValue) propertyResponse {
	resp := propertyResponse{ID: uint32(prop)}
	switch value.Kind {
	case eds.ValueString:
		resp.Str = &value.Str
	default:
		resp.Int = &value.Int
	}
	return resp
}

// parsePropertyID accepts decimal or 0x-prefixed hex IDs.
func parsePropertyID(w http.ResponseWriter, raw string) (eds.PropertyID, bool) {
	if raw == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		http.Error(w, "bad id parameter: "+err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return eds.PropertyID(id), true
}

func parseState(s string) (camera.State, bool) {
	switch s {
	case "default":
		return camera.StateDefault, true
	case "ui-locked":
		return camera.StateUILocked, true
	case "direct-transfer":
		return camera.StateDirectTransfer, true
	default:
		return 0, false
	}
}
