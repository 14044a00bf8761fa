package camera

import (
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/storage"
)

// A delegate implements any subset of the observer interfaces below; the
// notifier discovers the implemented methods by interface assertion and
// skips the rest. All methods are invoked on the vendor's callback context.

// PropertyObserver receives property value change notifications.
type PropertyObserver interface {
	CameraPropertyChanged(c *Camera, prop eds.PropertyID)
}

// SupportedValuesObserver is notified when the supported values of a property
// change. Any previously fetched supported-value list is stale after this.
type SupportedValuesObserver interface {
	CameraSupportedValuesChanged(c *Camera, prop eds.PropertyID)
}

// FileObserver receives file creation and removal notifications for the
// camera's volumes.
type FileObserver interface {
	CameraFileCreated(c *Camera, f *storage.File)
	CameraFileRemoved(c *Camera, f *storage.File)
}

// DisconnectObserver is notified when the camera shuts down or is unplugged.
// By the time it runs the session is already closed.
type DisconnectObserver interface {
	CameraDisconnected(c *Camera)
}

// SetDelegate registers the camera's delegate, silently replacing any prior
// one. Pass nil to remove the delegate. Safe to call concurrently with
// notification delivery: an in-flight notification goes to either the old or
// the new delegate, never both and never a torn reference.
func (c *Camera) SetDelegate(delegate any) {
	c.delegateMu.Lock()
	c.delegate = delegate
	c.delegateMu.Unlock()
}

// Delegate returns the camera's delegate, or nil if there is none.
func (c *Camera) Delegate() any {
	c.delegateMu.RLock()
	defer c.delegateMu.RUnlock()
	return c.delegate
}
