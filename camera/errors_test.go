package camera

import (
	"errors"
	"testing"

	"github.com/rassaifred/EOSFramework/eds"
)

func TestVendorErrMapping(t *testing.T) {
	cases := []struct {
		code eds.Code
		want *Error
	}{
		{eds.ErrCommDisconnected, ErrDisconnected},
		{eds.ErrDeviceInvalid, ErrDisconnected},
		{eds.ErrInvalidIndex, ErrInvalidIndex},
		{eds.ErrPropertiesUnavailable, ErrUnsupportedProperty},
		{eds.ErrInvalidParameter, ErrValueRejected},
		{eds.ErrDeviceBusy, ErrVendorFailure},
		{eds.ErrInternal, ErrVendorFailure},
	}

	for _, tc := range cases {
		err := vendorErr("op", tc.code)
		if !errors.Is(err, tc.want) {
			t.Errorf("code %s mapped to %v, want kind %v", tc.code, err, tc.want.Kind)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := vendorErr("set property", eds.ErrDeviceBusy)
	want := "set property: vendor communication failure (device busy)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if got := notOpen("send command").Error(); got != "send command: session not open" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorCarriesVendorCode(t *testing.T) {
	var cerr *Error
	err := vendorErr("get property", eds.ErrCommDisconnected)
	if !errors.As(err, &cerr) {
		t.Fatal("vendorErr is not *Error")
	}
	if cerr.Code != eds.ErrCommDisconnected {
		t.Errorf("Code = %s, want communication disconnected", cerr.Code)
	}
}
