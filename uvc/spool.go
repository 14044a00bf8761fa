package uvc

import "golang.org/x/sys/unix"

// spoolUsage reports the capacity and free space of the filesystem holding
// the spool directory.
func spoolUsage(dir string) (capacity, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}
