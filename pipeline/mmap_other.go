//go:build !unix

package pipeline

import "os"

// mmapReadOnly falls back to a plain read on build tags where
// unix.Mmap is unavailable (spec §4.8 step 2 is satisfied functionally;
// only the zero-copy mapping is POSIX-specific).
func mmapReadOnly(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, info.Size())
	if _, err := f.ReadAt(buf, 0); err != nil && len(buf) > 0 {
		return nil, err
	}
	return buf, nil
}

// munmap is a no-op for the portable fallback; the byte slice is
// ordinary heap memory collected normally.
func munmap(data []byte) error { return nil }
