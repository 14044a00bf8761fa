package camera

import "github.com/rassaifred/EOSFramework/eds"

// Property reads the current value of a camera property.
func (c *Camera) Property(prop eds.PropertyID) (eds.PropertyValue, error) {
	if err := c.ensureOpen("get property"); err != nil {
		return eds.PropertyValue{}, err
	}

	value, code := c.sdk.GetProperty(c.ref, prop)
	if code != eds.OK {
		return eds.PropertyValue{}, vendorErr("get property", code)
	}
	return value, nil
}

// SetProperty writes a camera property. Validation against the supported
// values is left to the camera; a vendor rejection surfaces as a
// value-rejected error, distinct from connectivity failures.
func (c *Camera) SetProperty(prop eds.PropertyID, value eds.PropertyValue) error {
	if err := c.ensureOpen("set property"); err != nil {
		return err
	}

	if code := c.sdk.SetProperty(c.ref, prop, value); code != eds.OK {
		return vendorErr("set property", code)
	}
	return nil
}

// SupportedValues returns the values the camera supports for a property in
// its current mode, in the order the vendor reports them (significant, e.g.
// ISO ascending). The list changes with the camera mode, so it must be
// re-queried after any mode or state change rather than cached. Properties
// that are not list-constrained fail with an unsupported-property error.
func (c *Camera) SupportedValues(prop eds.PropertyID) ([]eds.PropertyValue, error) {
	if err := c.ensureOpen("get supported values"); err != nil {
		return nil, err
	}

	values, code := c.sdk.GetPropertyDesc(c.ref, prop)
	if code != eds.OK {
		return nil, vendorErr("get supported values", code)
	}
	return values, nil
}
