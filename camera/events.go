package camera

import (
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/storage"
)

// callbacks builds the event registration block handed to the vendor on
// session open. Notifications are forwarded to the delegate in vendor
// delivery order, with no reordering or coalescing.
func (c *Camera) callbacks() eds.Callbacks {
	return eds.Callbacks{
		Property: c.handlePropertyEvent,
		Object:   c.handleObjectEvent,
		State:    c.handleStateEvent,
	}
}

func (c *Camera) handlePropertyEvent(event eds.PropertyEvent, prop eds.PropertyID) {
	switch event {
	case eds.PropertyChanged:
		if o, ok := c.Delegate().(PropertyObserver); ok {
			o.CameraPropertyChanged(c, prop)
		}
	case eds.PropertyDescChanged:
		if o, ok := c.Delegate().(SupportedValuesObserver); ok {
			o.CameraSupportedValuesChanged(c, prop)
		}
	default:
		c.log.Debug("unknown property event", "event", uint32(event))
	}
}

func (c *Camera) handleObjectEvent(event eds.ObjectEvent, info eds.FileInfo) {
	o, ok := c.Delegate().(FileObserver)
	if !ok {
		return
	}

	file := storage.NewFile(info)
	switch event {
	case eds.ObjectCreated:
		o.CameraFileCreated(c, file)
	case eds.ObjectRemoved:
		o.CameraFileRemoved(c, file)
	default:
		c.log.Debug("unknown object event", "event", uint32(event))
	}
}

func (c *Camera) handleStateEvent(event eds.StateEvent, param uint32) {
	switch event {
	case eds.StateShutdown:
		c.handleDisconnect()
	case eds.StateWillShutdown:
		c.log.Debug("camera will shut down", "param", param)
	case eds.StateInternalError:
		c.log.Warn("camera internal error", "param", param)
	default:
		c.log.Debug("unknown state event", "event", uint32(event), "param", param)
	}
}

// handleDisconnect transitions the session to closed exactly once, even when
// racing a caller's CloseSession: whichever acquires the lock first performs
// the transition and the other observes the closed state. The device is gone,
// so only the local registration is torn down.
func (c *Camera) handleDisconnect() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	c.state = StateDefault
	if code := c.sdk.ClearCallbacks(c.ref); code != eds.OK {
		c.log.Warn("clear callbacks failed", "code", code)
	}
	c.mu.Unlock()

	c.log.Info("camera disconnected")
	if o, ok := c.Delegate().(DisconnectObserver); ok {
		o.CameraDisconnected(c)
	}
}
