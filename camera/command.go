package camera

import "github.com/rassaifred/EOSFramework/eds"

// SendCommand sends a parameterless command to the camera. Commands whose
// semantics need a parameter (shutter button transitions) must go through
// SendCommandWithParam instead; this layer does not validate arity.
func (c *Camera) SendCommand(cmd eds.Command) error {
	return c.sendCommand(cmd, 0)
}

// SendCommandWithParam sends a command with an integer parameter. Commands
// are issued synchronously and are not queued; pairing correctness of
// bulb-start/bulb-end is the caller's responsibility.
func (c *Camera) SendCommandWithParam(cmd eds.Command, param int64) error {
	return c.sendCommand(cmd, param)
}

// PressShutterButton drives the shutter button through one of its states.
func (c *Camera) PressShutterButton(state eds.ShutterButton) error {
	return c.sendCommand(eds.CommandPressShutterButton, int64(state))
}

func (c *Camera) sendCommand(cmd eds.Command, param int64) error {
	if err := c.ensureOpen("send command"); err != nil {
		return err
	}

	if code := c.sdk.SendCommand(c.ref, cmd, param); code != eds.OK {
		return vendorErr("send command", code)
	}
	return nil
}
