// Package camera is the control and state-management layer for one tethered
// camera: session lifecycle, property access, command dispatch, operating
// state transitions, volume enumeration and the async notification bridge
// between the vendor SDK's callbacks and a single registered delegate.
package camera

import (
	"log/slog"
	"sync"

	"github.com/rassaifred/EOSFramework/eds"
)

// Camera wraps one vendor camera handle. All functional operations require an
// open session and fail with a session-not-open error otherwise; they never
// silently no-op. Caller-issued operations on one Camera are ordered by call
// order, while vendor notifications arrive on the vendor's own callback
// context and are not ordered relative to caller calls.
type Camera struct {
	log *slog.Logger
	sdk eds.SDK
	ref eds.CameraRef

	port        string
	description string

	mu    sync.Mutex // serializes session and operating-state transitions
	open  bool
	state State

	delegateMu sync.RWMutex
	delegate   any
}

// New wraps a vendor camera handle. The handle, port name and description come
// from the device manager; the session starts closed and must be opened with
// OpenSession before any other operation.
func New(log *slog.Logger, sdk eds.SDK, ref eds.CameraRef, port, description string) *Camera {
	if log == nil {
		log = slog.Default()
	}
	return &Camera{
		log: log.With("svc", "camera", "port", port),
		sdk: sdk,
		ref: ref,

		port:        port,
		description: description,
		state:       StateDefault,
	}
}

// Ref returns the underlying vendor handle. Handle equality is the only
// camera identity; port and description are display strings.
func (c *Camera) Ref() eds.CameraRef { return c.ref }

// Port is the camera's position in the vendor device list. It can change when
// cameras are plugged or unplugged, so it must not be used as an identifier.
func (c *Camera) Port() string { return c.port }

// Description is typically the camera's model name.
func (c *Camera) Description() string { return c.description }

// IsOpen reports whether the camera has an open session.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// OpenSession opens a session with the camera and registers the event
// callbacks for it. If registration fails the session is closed again before
// returning; a camera is never left open without active event registration.
func (c *Camera) OpenSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return &Error{Kind: KindSessionAlreadyOpen, Op: "open session"}
	}

	if code := c.sdk.OpenSession(c.ref); code != eds.OK {
		return vendorErr("open session", code)
	}

	if code := c.sdk.SetCallbacks(c.ref, c.callbacks()); code != eds.OK {
		// roll back: the session must not stay open without event delivery
		if cc := c.sdk.CloseSession(c.ref); cc != eds.OK {
			c.log.Warn("rollback close failed", "code", cc)
		}
		return vendorErr("register callbacks", code)
	}

	c.open = true
	c.log.Debug("session opened")
	return nil
}

// CloseSession closes the camera session. Closing a camera that has no open
// session is reported as an error, consistent with the gating of every other
// operation. On vendor failure the session is considered still open.
func (c *Camera) CloseSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return notOpen("close session")
	}

	if code := c.sdk.CloseSession(c.ref); code != eds.OK {
		return vendorErr("close session", code)
	}

	if code := c.sdk.ClearCallbacks(c.ref); code != eds.OK {
		c.log.Warn("clear callbacks failed", "code", code)
	}

	c.open = false
	c.log.Debug("session closed")
	return nil
}

// Release force-closes the session regardless of its reported state. It is
// the teardown path used when the owning device manager drops the camera; the
// underlying handle must not leak even if the vendor reports the close as
// failed.
func (c *Camera) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return
	}

	if code := c.sdk.CloseSession(c.ref); code != eds.OK {
		c.log.Warn("force close failed", "code", code)
	}
	if code := c.sdk.ClearCallbacks(c.ref); code != eds.OK {
		c.log.Warn("clear callbacks failed", "code", code)
	}
	c.open = false
	c.log.Debug("session released")
}

// ensureOpen gates an operation on the session being open.
func (c *Camera) ensureOpen(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return notOpen(op)
	}
	return nil
}
