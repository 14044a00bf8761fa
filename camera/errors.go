package camera

import (
	"fmt"

	"github.com/rassaifred/EOSFramework/eds"
)

// Kind classifies a camera error.
type Kind int

const (
	KindSessionNotOpen Kind = iota + 1
	KindSessionAlreadyOpen
	KindInvalidIndex
	KindUnsupportedProperty
	KindValueRejected
	KindVendorFailure
	KindDisconnected
)

var kindNames = map[Kind]string{
	KindSessionNotOpen:      "session not open",
	KindSessionAlreadyOpen:  "session already open",
	KindInvalidIndex:        "invalid index",
	KindUnsupportedProperty: "unsupported property operation",
	KindValueRejected:       "value rejected by camera",
	KindVendorFailure:       "vendor communication failure",
	KindDisconnected:        "device disconnected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrNotOpen             = &Error{Kind: KindSessionNotOpen}
	ErrAlreadyOpen         = &Error{Kind: KindSessionAlreadyOpen}
	ErrInvalidIndex        = &Error{Kind: KindInvalidIndex}
	ErrUnsupportedProperty = &Error{Kind: KindUnsupportedProperty}
	ErrValueRejected       = &Error{Kind: KindValueRejected}
	ErrVendorFailure       = &Error{Kind: KindVendorFailure}
	ErrDisconnected        = &Error{Kind: KindDisconnected}
)

// Error is the uniform error for every fallible camera operation. Code is the
// originating vendor status code, zero when the failure was detected locally
// (for example calling an operation with the session closed).
type Error struct {
	Kind Kind
	Code eds.Code
	Op   string
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Code == eds.OK:
		return e.Kind.String()
	case e.Code == eds.OK:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Kind, e.Code)
	}
}

// Is reports kind equality, so errors.Is(err, camera.ErrNotOpen) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// notOpen is the dedicated gating error for operations on a closed session.
func notOpen(op string) error {
	return &Error{Kind: KindSessionNotOpen, Op: op}
}

// vendorErr maps a vendor status code into the error taxonomy.
func vendorErr(op string, code eds.Code) error {
	return &Error{Kind: kindForCode(code), Code: code, Op: op}
}

func kindForCode(code eds.Code) Kind {
	switch code {
	case eds.ErrCommDisconnected, eds.ErrCommUSBBusErr, eds.ErrDeviceInvalid, eds.ErrDeviceNotFound:
		return KindDisconnected
	case eds.ErrSessionNotOpen:
		return KindSessionNotOpen
	case eds.ErrSessionAlreadyOpen:
		return KindSessionAlreadyOpen
	case eds.ErrInvalidIndex:
		return KindInvalidIndex
	case eds.ErrPropertiesUnavailable, eds.ErrPropertiesNotLoaded:
		return KindUnsupportedProperty
	case eds.ErrInvalidParameter, eds.ErrPropertiesMismatch:
		return KindValueRejected
	default:
		return KindVendorFailure
	}
}
