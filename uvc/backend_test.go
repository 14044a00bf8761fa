package uvc

import (
	"testing"

	"github.com/rassaifred/EOSFramework/eds"
)

func TestPropertyForControl(t *testing.T) {
	cases := []struct {
		name string
		want eds.PropertyID
		ok   bool
	}{
		{"Gain", eds.PropISO, true},
		{"Exposure Time, Absolute", eds.PropShutterSpeed, true},
		{"Exposure, Auto", 0, false},
		{"Iris, Absolute", eds.PropAperture, true},
		{"White Balance Temperature", eds.PropWhiteBalance, true},
		{"White Balance Temperature, Auto", 0, false},
		{"Brightness", eds.PropExposureComp, true},
		{"Saturation", 0, false},
	}

	for _, tc := range cases {
		got, ok := propertyForControl(tc.name)
		if ok != tc.ok || got != tc.want {
			t.Errorf("propertyForControl(%q) = (%v, %v), want (%v, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSteppedValues(t *testing.T) {
	values := steppedValues(0, 255)
	if len(values) == 0 || len(values) > 17 {
		t.Fatalf("steppedValues(0, 255) returned %d entries", len(values))
	}
	if values[0] != eds.IntValue(0) {
		t.Errorf("first value = %v, want 0", values[0])
	}
	if values[len(values)-1] != eds.IntValue(255) {
		t.Errorf("last value = %v, want 255", values[len(values)-1])
	}
	for i := 1; i < len(values); i++ {
		if values[i].Int <= values[i-1].Int {
			t.Fatalf("values not strictly ascending at %d: %v", i, values)
		}
	}
}

func TestSteppedValues_NarrowRange(t *testing.T) {
	values := steppedValues(2, 5)
	want := []int64{2, 3, 4, 5}
	if len(values) != len(want) {
		t.Fatalf("got %d entries, want %d", len(values), len(want))
	}
	for i, w := range want {
		if values[i].Int != w {
			t.Errorf("value[%d] = %d, want %d", i, values[i].Int, w)
		}
	}
}

func TestClosedBackendReportsSessionNotOpen(t *testing.T) {
	b := New(nil, Config{Device: "/dev/video-none", SpoolDir: t.TempDir()})

	if _, code := b.GetProperty(Ref, eds.PropISO); code != eds.ErrSessionNotOpen {
		t.Errorf("GetProperty on closed backend: %s", code)
	}
	if code := b.SendCommand(Ref, eds.CommandTakePicture, 0); code != eds.ErrSessionNotOpen {
		t.Errorf("SendCommand on closed backend: %s", code)
	}
	if code := b.CloseSession(Ref); code != eds.ErrSessionNotOpen {
		t.Errorf("CloseSession on closed backend: %s", code)
	}
}
