//go:build unix

package pipeline

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapReadOnly memory-maps f read-only for its current size (spec §4.8
// step 2 "open the read-cache read-only via memory-mapped I/O"),
// grounded on gogpu-wgpu's go.mod already requiring golang.org/x/sys
// for its platform backends — this module exercises the unix build of
// the same dependency for POSIX mmap.
func mmapReadOnly(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
}

// munmap releases a mapping returned by mmapReadOnly.
func munmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}
