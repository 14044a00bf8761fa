package camera

import "github.com/rassaifred/EOSFramework/eds"

// State is one of the camera's mutually exclusive operating modes.
type State int

const (
	// StateDefault is the normal interactive mode.
	StateDefault State = iota
	// StateUILocked disables the camera's own controls.
	StateUILocked
	// StateDirectTransfer puts the camera into direct transfer mode.
	StateDirectTransfer
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateUILocked:
		return "ui-locked"
	case StateDirectTransfer:
		return "direct-transfer"
	default:
		return "unknown"
	}
}

// State returns the last state the camera acknowledged. It is cached on
// successful SetState, not polled from the device.
func (c *Camera) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions the camera to the target operating state. States form
// a flat set; any state is reachable from any other in one transition. The
// transition goes through the vendor and can fail (device busy, battery
// pulled); a failed transition leaves the cached state unchanged.
func (c *Camera) SetState(target State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return notOpen("set state")
	}
	if target == c.state {
		return nil
	}

	for _, sc := range transitionCommands(c.state, target) {
		if code := c.sdk.SendStatusCommand(c.ref, sc); code != eds.OK {
			return vendorErr("set state", code)
		}
	}

	c.state = target
	c.log.Debug("state changed", "state", target.String())
	return nil
}

// transitionCommands yields the vendor status commands that leave the current
// state and enter the target.
func transitionCommands(from, to State) []eds.StatusCommand {
	var cmds []eds.StatusCommand
	switch from {
	case StateUILocked:
		cmds = append(cmds, eds.StatusUIUnlock)
	case StateDirectTransfer:
		cmds = append(cmds, eds.StatusExitDirectTransfer)
	}
	switch to {
	case StateUILocked:
		cmds = append(cmds, eds.StatusUILock)
	case StateDirectTransfer:
		cmds = append(cmds, eds.StatusEnterDirectTransfer)
	}
	return cmds
}
