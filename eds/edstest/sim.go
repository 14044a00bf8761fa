// Package edstest provides an in-memory implementation of eds.SDK for tests
// and for running the stack without hardware. The simulator records every
// call, supports per-operation failure injection and can emit vendor events
// on demand.
package edstest

import (
	"fmt"
	"sync"

	"github.com/rassaifred/EOSFramework/eds"
)

// Call is one recorded SDK invocation.
type Call struct {
	Op   string
	Args []any
}

// Sim is a scriptable in-memory camera. The zero value is not usable; create
// it with NewSim. All methods are safe for concurrent use.
type Sim struct {
	mu sync.Mutex

	open       bool
	registered bool
	cb         eds.Callbacks

	properties map[eds.PropertyID]eds.PropertyValue
	supported  map[eds.PropertyID][]eds.PropertyValue
	volumes    []eds.VolumeInfo

	fail       map[string]eds.Code // op name -> injected failure
	failVolume map[int]eds.Code    // volume index -> injected failure
	calls      []Call
}

// Ref is the handle the simulator answers to.
const Ref eds.CameraRef = 1

// NewSim creates a simulator with a small default property set and a single
// mounted volume.
func NewSim() *Sim {
	return &Sim{
		properties: map[eds.PropertyID]eds.PropertyValue{
			eds.PropISO:          eds.IntValue(100),
			eds.PropAperture:     eds.IntValue(40),
			eds.PropShutterSpeed: eds.IntValue(115),
			eds.PropProductName:  eds.StringValue("Simulated Camera"),
		},
		supported: map[eds.PropertyID][]eds.PropertyValue{
			eds.PropISO: {
				eds.IntValue(100), eds.IntValue(200), eds.IntValue(400),
				eds.IntValue(800), eds.IntValue(1600),
			},
			eds.PropAperture: {
				eds.IntValue(28), eds.IntValue(40), eds.IntValue(56), eds.IntValue(80),
			},
		},
		volumes: []eds.VolumeInfo{
			{Ref: 100, Label: "SD1", Capacity: 32 << 30, Free: 16 << 30},
		},
		fail:       make(map[string]eds.Code),
		failVolume: make(map[int]eds.Code),
	}
}

// FailWith injects a vendor failure for the named operation ("OpenSession",
// "SetProperty", ...). Injecting eds.OK removes the failure.
func (s *Sim) FailWith(op string, code eds.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == eds.OK {
		delete(s.fail, op)
		return
	}
	s.fail[op] = code
}

// Calls returns a copy of the recorded call log.
func (s *Sim) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded calls for one operation.
func (s *Sim) CallsTo(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the call log.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// IsOpen reports the simulator's own session flag.
func (s *Sim) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Registered reports whether callbacks are currently registered.
func (s *Sim) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered
}

// SetSupported replaces the supported-value list for a property.
func (s *Sim) SetSupported(prop eds.PropertyID, values []eds.PropertyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supported[prop] = values
}

// SetVolumes replaces the mounted volume list.
func (s *Sim) SetVolumes(volumes []eds.VolumeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes = volumes
}

// record logs a call and returns the injected failure for it, if any.
func (s *Sim) record(op string, args ...any) eds.Code {
	s.calls = append(s.calls, Call{Op: op, Args: args})
	if code, ok := s.fail[op]; ok {
		return code
	}
	return eds.OK
}

func (s *Sim) checkRef(cam eds.CameraRef) eds.Code {
	if cam != Ref {
		return eds.ErrInvalidHandle
	}
	return eds.OK
}

func (s *Sim) OpenSession(cam eds.CameraRef) eds.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("OpenSession"); code != eds.OK {
		return code
	}
	if code := s.checkRef(cam); code != eds.OK {
		return code
	}
	if s.open {
		return eds.ErrSessionAlreadyOpen
	}
	s.open = true
	return eds.OK
}

func (s *Sim) CloseSession(cam eds.CameraRef) eds.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("CloseSession"); code != eds.OK {
		return code
	}
	if code := s.checkRef(cam); code != eds.OK {
		return code
	}
	if !s.open {
		return eds.ErrSessionNotOpen
	}
	s.open = false
	return eds.OK
}

func (s *Sim) GetProperty(cam eds.CameraRef, prop eds.PropertyID) (eds.PropertyValue, eds.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("GetProperty", prop); code != eds.OK {
		return eds.PropertyValue{}, code
	}
	value, ok := s.properties[prop]
	if !ok {
		return eds.PropertyValue{}, eds.ErrPropertiesUnavailable
	}
	return value, eds.OK
}

func (s *Sim) SetProperty(cam eds.CameraRef, prop eds.PropertyID, value eds.PropertyValue) eds.Code {
	s.mu.Lock()
	cb := s.cb
	if code := s.record("SetProperty", prop, value); code != eds.OK {
		s.mu.Unlock()
		return code
	}
	// list-constrained properties reject values outside the supported set
	if supported, ok := s.supported[prop]; ok {
		found := false
		for _, v := range supported {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			s.mu.Unlock()
			return eds.ErrInvalidParameter
		}
	}
	s.properties[prop] = value
	s.mu.Unlock()

	if cb.Property != nil {
		cb.Property(eds.PropertyChanged, prop)
	}
	return eds.OK
}

func (s *Sim) GetPropertyDesc(cam eds.CameraRef, prop eds.PropertyID) ([]eds.PropertyValue, eds.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("GetPropertyDesc", prop); code != eds.OK {
		return nil, code
	}
	values, ok := s.supported[prop]
	if !ok {
		return nil, eds.ErrPropertiesUnavailable
	}
	return append([]eds.PropertyValue(nil), values...), eds.OK
}

func (s *Sim) SendCommand(cam eds.CameraRef, cmd eds.Command, param int64) eds.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record("SendCommand", cmd, param)
}

func (s *Sim) SendStatusCommand(cam eds.CameraRef, cmd eds.StatusCommand) eds.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record("SendStatusCommand", cmd)
}

func (s *Sim) GetVolumeCount(cam eds.CameraRef) (int, eds.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("GetVolumeCount"); code != eds.OK {
		return 0, code
	}
	return len(s.volumes), eds.OK
}

func (s *Sim) GetVolumeInfo(cam eds.CameraRef, index int) (eds.VolumeInfo, eds.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("GetVolumeInfo", index); code != eds.OK {
		return eds.VolumeInfo{}, code
	}
	if index < 0 || index >= len(s.volumes) {
		return eds.VolumeInfo{}, eds.ErrInvalidIndex
	}
	if code, ok := s.failVolume[index]; ok {
		return eds.VolumeInfo{}, code
	}
	return s.volumes[index], eds.OK
}

// FailVolumeAt injects a failure for one volume index.
func (s *Sim) FailVolumeAt(index int, code eds.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == eds.OK {
		delete(s.failVolume, index)
		return
	}
	s.failVolume[index] = code
}

func (s *Sim) SetCallbacks(cam eds.CameraRef, cb eds.Callbacks) eds.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("SetCallbacks"); code != eds.OK {
		return code
	}
	s.cb = cb
	s.registered = true
	return eds.OK
}

func (s *Sim) ClearCallbacks(cam eds.CameraRef) eds.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.record("ClearCallbacks"); code != eds.OK {
		return code
	}
	s.cb = eds.Callbacks{}
	s.registered = false
	return eds.OK
}

// EmitPropertyChanged delivers a property-changed event as the vendor would.
func (s *Sim) EmitPropertyChanged(prop eds.PropertyID) {
	s.emitProperty(eds.PropertyChanged, prop)
}

// EmitSupportedValuesChanged delivers a property-desc-changed event.
func (s *Sim) EmitSupportedValuesChanged(prop eds.PropertyID) {
	s.emitProperty(eds.PropertyDescChanged, prop)
}

func (s *Sim) emitProperty(event eds.PropertyEvent, prop eds.PropertyID) {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()
	if cb.Property != nil {
		cb.Property(event, prop)
	}
}

// EmitFileCreated delivers an object-created event for a synthetic file.
func (s *Sim) EmitFileCreated(info eds.FileInfo) {
	s.emitObject(eds.ObjectCreated, info)
}

// EmitFileRemoved delivers an object-removed event.
func (s *Sim) EmitFileRemoved(info eds.FileInfo) {
	s.emitObject(eds.ObjectRemoved, info)
}

func (s *Sim) emitObject(event eds.ObjectEvent, info eds.FileInfo) {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()
	if cb.Object != nil {
		cb.Object(event, info)
	}
}

// EmitShutdown simulates the device disconnecting: subsequent calls fail with
// a disconnected code and the registered state callback fires.
func (s *Sim) EmitShutdown() {
	s.mu.Lock()
	cb := s.cb
	for _, op := range []string{
		"OpenSession", "CloseSession", "GetProperty", "SetProperty",
		"GetPropertyDesc", "SendCommand", "SendStatusCommand",
		"GetVolumeCount", "GetVolumeInfo",
	} {
		s.fail[op] = eds.ErrCommDisconnected
	}
	s.mu.Unlock()

	if cb.State != nil {
		cb.State(eds.StateShutdown, 0)
	}
}

var _ eds.SDK = (*Sim)(nil)

// String implements fmt.Stringer for test failure output.
func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}
