package camera

import (
	"github.com/rassaifred/EOSFramework/eds"
	"github.com/rassaifred/EOSFramework/storage"
)

// VolumeCount returns the number of volumes currently mounted on the camera.
// The count is mode and time dependent; re-query it before indexing.
func (c *Camera) VolumeCount() (int, error) {
	if err := c.ensureOpen("get volume count"); err != nil {
		return 0, err
	}

	count, code := c.sdk.GetVolumeCount(c.ref)
	if code != eds.OK {
		return 0, vendorErr("get volume count", code)
	}
	return count, nil
}

// VolumeAt returns the volume at the given index. An index outside the
// current range is reported as an invalid-index error, distinct from generic
// vendor failures.
func (c *Camera) VolumeAt(index int) (*storage.Volume, error) {
	count, err := c.VolumeCount()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= count {
		return nil, &Error{Kind: KindInvalidIndex, Op: "get volume"}
	}

	info, code := c.sdk.GetVolumeInfo(c.ref, index)
	if code != eds.OK {
		return nil, vendorErr("get volume", code)
	}
	return storage.NewVolume(info), nil
}

// Volumes returns all volumes mounted on the camera, in index order. It is a
// deliberately lossy convenience: a volume that fails to load is skipped and
// enumeration continues. Callers that need per-index error visibility must
// use VolumeAt directly.
func (c *Camera) Volumes() []*storage.Volume {
	count, err := c.VolumeCount()
	if err != nil {
		c.log.Warn("fail to get volume count", "err", err)
		return nil
	}

	volumes := make([]*storage.Volume, 0, count)
	for i := 0; i < count; i++ {
		info, code := c.sdk.GetVolumeInfo(c.ref, i)
		if code != eds.OK {
			c.log.Warn("skipping volume", "index", i, "code", code)
			continue
		}
		volumes = append(volumes, storage.NewVolume(info))
	}
	return volumes
}
