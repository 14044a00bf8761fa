// Package storage wraps vendor volume and file handles into objects handed to
// callers and observers. Traversal and transfer of their contents live in a
// separate component; this package only carries the identifying info the
// vendor reports at wrap time.
package storage

import (
	"fmt"

	"github.com/rassaifred/EOSFramework/eds"
)

// Volume is one storage unit mounted on a camera.
type Volume struct {
	ref  eds.VolumeRef
	info eds.VolumeInfo
}

// NewVolume wraps a vendor volume handle with the info reported for it.
func NewVolume(info eds.VolumeInfo) *Volume {
	return &Volume{ref: info.Ref, info: info}
}

// Ref returns the underlying vendor handle.
func (v *Volume) Ref() eds.VolumeRef { return v.ref }

// Label is the volume label, typically the card name.
func (v *Volume) Label() string { return v.info.Label }

// Capacity is the total size of the volume in bytes.
func (v *Volume) Capacity() uint64 { return v.info.Capacity }

// Free is the free space on the volume in bytes.
func (v *Volume) Free() uint64 { return v.info.Free }

// ReadOnly reports whether the volume is write protected.
func (v *Volume) ReadOnly() bool { return v.info.ReadOnly }

func (v *Volume) String() string {
	return fmt.Sprintf("volume %q (%d/%d bytes free)", v.info.Label, v.info.Free, v.info.Capacity)
}

// File is one file entry on a camera volume, as referenced by an object event.
type File struct {
	ref  eds.FileRef
	info eds.FileInfo
}

// NewFile wraps a vendor file handle with the info reported for it.
func NewFile(info eds.FileInfo) *File {
	return &File{ref: info.Ref, info: info}
}

// Ref returns the underlying vendor handle.
func (f *File) Ref() eds.FileRef { return f.ref }

// Name is the file name as reported by the camera.
func (f *File) Name() string { return f.info.Name }

// Size is the file size in bytes.
func (f *File) Size() uint64 { return f.info.Size }

// IsDir reports whether the entry is a directory.
func (f *File) IsDir() bool { return f.info.IsDir }

func (f *File) String() string {
	return fmt.Sprintf("file %q (%d bytes)", f.info.Name, f.info.Size)
}
