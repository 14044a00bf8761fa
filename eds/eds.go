// Package eds abstracts the vendor camera SDK: opaque handles, vendor status
// codes and a handle-based call surface for sessions, properties, commands,
// volumes and async event callbacks. Backends (real hardware or the edstest
// simulator) implement SDK; everything above this package is vendor-agnostic.
package eds

// CameraRef is an opaque vendor handle for a physical camera. It is borrowed
// from the device manager and stays valid for the camera object's lifetime.
// Two refs are the same camera iff they are equal.
type CameraRef uint64

// VolumeRef is an opaque vendor handle for a storage unit mounted on a camera.
type VolumeRef uint64

// FileRef is an opaque vendor handle for a file or directory entry on a volume.
type FileRef uint64

// PropertyID identifies a camera property.
type PropertyID uint32

const (
	PropAperture     PropertyID = 0x0405
	PropShutterSpeed PropertyID = 0x0406
	PropISO          PropertyID = 0x0407
	PropExposureComp PropertyID = 0x0408
	PropWhiteBalance PropertyID = 0x0106
	PropImageQuality PropertyID = 0x0100
	PropAEMode       PropertyID = 0x0400
	PropMeteringMode PropertyID = 0x0403
	PropBatteryLevel PropertyID = 0x0008
	PropProductName  PropertyID = 0x0002
	PropOwnerName    PropertyID = 0x0004
)

// Command identifies a discrete camera command.
type Command uint32

const (
	CommandTakePicture         Command = 0x0000
	CommandExtendShutDownTimer Command = 0x0001
	CommandBulbStart           Command = 0x0002
	CommandBulbEnd             Command = 0x0003
	CommandPressShutterButton  Command = 0x0004
)

// ShutterButton values are the parameter for CommandPressShutterButton.
type ShutterButton int64

const (
	ShutterButtonOff             ShutterButton = 0x00000000
	ShutterButtonHalfway         ShutterButton = 0x00000001
	ShutterButtonCompletely      ShutterButton = 0x00000003
	ShutterButtonHalfwayNonAF    ShutterButton = 0x00010001
	ShutterButtonCompletelyNonAF ShutterButton = 0x00010003
)

// StatusCommand switches the camera between its high-level operating modes.
type StatusCommand uint32

const (
	StatusUILock              StatusCommand = 0x0000
	StatusUIUnlock            StatusCommand = 0x0001
	StatusEnterDirectTransfer StatusCommand = 0x0002
	StatusExitDirectTransfer  StatusCommand = 0x0003
)

// PropertyEvent kinds delivered through Callbacks.Property.
type PropertyEvent uint32

const (
	PropertyChanged     PropertyEvent = 0x0101
	PropertyDescChanged PropertyEvent = 0x0102
)

// ObjectEvent kinds delivered through Callbacks.Object.
type ObjectEvent uint32

const (
	ObjectCreated ObjectEvent = 0x0204
	ObjectRemoved ObjectEvent = 0x0205
)

// StateEvent kinds delivered through Callbacks.State.
type StateEvent uint32

const (
	StateShutdown      StateEvent = 0x0301
	StateWillShutdown  StateEvent = 0x0303
	StateInternalError StateEvent = 0x0302
)

// ValueKind discriminates PropertyValue payloads.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueString
)

// PropertyValue is a discriminated property payload. Numeric properties
// (aperture, shutter speed, ISO, ...) use Int; free-text properties
// (owner name, product name) use Str.
type PropertyValue struct {
	Kind ValueKind
	Int  int64
	Str  string
}

// IntValue wraps an integer payload.
func IntValue(v int64) PropertyValue { return PropertyValue{Kind: ValueInt, Int: v} }

// StringValue wraps a string payload.
func StringValue(s string) PropertyValue { return PropertyValue{Kind: ValueString, Str: s} }

// VolumeInfo describes a mounted storage unit as reported by the vendor.
type VolumeInfo struct {
	Ref      VolumeRef
	Label    string
	Capacity uint64
	Free     uint64
	ReadOnly bool
}

// FileInfo describes a file entry referenced by an object event.
type FileInfo struct {
	Ref   FileRef
	Name  string
	Size  uint64
	IsDir bool
}

// Callbacks is the event registration block for one camera handle. Any field
// may be nil. The vendor invokes these on its own callback context; they can
// interleave arbitrarily with caller-issued SDK calls.
type Callbacks struct {
	Property func(event PropertyEvent, prop PropertyID)
	Object   func(event ObjectEvent, file FileInfo)
	State    func(event StateEvent, param uint32)
}

// SDK is the vendor capability surface. Every call is synchronous and returns
// a vendor status Code; OK means success. No call retries internally.
type SDK interface {
	OpenSession(cam CameraRef) Code
	CloseSession(cam CameraRef) Code

	GetProperty(cam CameraRef, prop PropertyID) (PropertyValue, Code)
	SetProperty(cam CameraRef, prop PropertyID, value PropertyValue) Code
	// GetPropertyDesc returns the supported values for prop in the camera's
	// current mode, in vendor order. Properties that are not list-constrained
	// report ErrPropertiesUnavailable.
	GetPropertyDesc(cam CameraRef, prop PropertyID) ([]PropertyValue, Code)

	SendCommand(cam CameraRef, cmd Command, param int64) Code
	SendStatusCommand(cam CameraRef, cmd StatusCommand) Code

	GetVolumeCount(cam CameraRef) (int, Code)
	GetVolumeInfo(cam CameraRef, index int) (VolumeInfo, Code)

	// SetCallbacks registers the event block for cam, replacing any previous
	// registration. ClearCallbacks deregisters it.
	SetCallbacks(cam CameraRef, cb Callbacks) Code
	ClearCallbacks(cam CameraRef) Code
}
