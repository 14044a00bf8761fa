package eds

import "fmt"

// Code is a vendor status code. OK is success; everything else is a failure
// reported by the SDK.
type Code uint32

const (
	OK Code = 0x0000

	ErrInternal         Code = 0x0002
	ErrNotSupported     Code = 0x0080
	ErrInvalidParameter Code = 0x0060
	ErrInvalidHandle    Code = 0x0061
	ErrInvalidIndex     Code = 0x0063

	ErrDeviceNotFound Code = 0x0080c0
	ErrDeviceBusy     Code = 0x0081
	ErrDeviceInvalid  Code = 0x0082

	ErrSessionNotOpen     Code = 0x00c3
	ErrSessionAlreadyOpen Code = 0x00c4

	ErrPropertiesUnavailable Code = 0x0400
	ErrPropertiesMismatch    Code = 0x0401
	ErrPropertiesNotLoaded   Code = 0x0402

	ErrCommDisconnected Code = 0x00c0
	ErrCommBufferFull   Code = 0x00c1
	ErrCommUSBBusErr    Code = 0x00c2

	ErrTakePictureAFNG     Code = 0x8d01
	ErrTakePictureCardNG   Code = 0x8d04
	ErrTakePictureNoCardNG Code = 0x8d07
)

var codeNames = map[Code]string{
	OK:                       "ok",
	ErrInternal:              "internal error",
	ErrNotSupported:          "not supported",
	ErrInvalidParameter:      "invalid parameter",
	ErrInvalidHandle:         "invalid handle",
	ErrInvalidIndex:          "invalid index",
	ErrDeviceNotFound:        "device not found",
	ErrDeviceBusy:            "device busy",
	ErrDeviceInvalid:         "device invalid",
	ErrSessionNotOpen:        "session not open",
	ErrSessionAlreadyOpen:    "session already open",
	ErrPropertiesUnavailable: "properties unavailable",
	ErrPropertiesMismatch:    "properties mismatch",
	ErrPropertiesNotLoaded:   "properties not loaded",
	ErrCommDisconnected:      "communication disconnected",
	ErrCommBufferFull:        "communication buffer full",
	ErrCommUSBBusErr:         "usb bus error",
	ErrTakePictureAFNG:       "autofocus failed",
	ErrTakePictureCardNG:     "memory card error",
	ErrTakePictureNoCardNG:   "no memory card",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("vendor code 0x%04x", uint32(c))
}
