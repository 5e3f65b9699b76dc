// Package platform declares the host facilities the storage engine consumes:
// a monotonic millisecond clock, a free-memory probe, and a byte store over
// named paths. OS-backed defaults are provided; tests substitute fakes.
package platform

import (
	"io"
	"math"
	"os"
	"runtime"
	"runtime/debug"
	"time"
)

// Clock is a monotonically increasing millisecond counter. The counter is
// 32-bit and rolls over roughly every 49.7 days; consumers are expected to
// use wraparound-safe arithmetic.
type Clock interface {
	NowMillis() uint32
}

// SystemClock derives the millisecond counter from the process start time.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowMillis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// FreeMemoryFunc reports an estimate of the free heap, in bytes. The engine
// calls it before allocation-heavy operations to fail early with a distinct
// error instead of aborting on allocation.
type FreeMemoryFunc func() uint64

// FreeMemory is the default probe. When a runtime memory limit is set
// (GOMEMLIMIT or debug.SetMemoryLimit) it reports the headroom below that
// limit; otherwise the heap grows on demand and the probe reports an
// effectively unlimited value.
func FreeMemory() uint64 {
	limit := debug.SetMemoryLimit(-1)
	if limit == math.MaxInt64 {
		return math.MaxUint64
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if uint64(limit) <= ms.HeapInuse {
		return 0
	}
	return uint64(limit) - ms.HeapInuse
}

// Store is the byte store consumed by snapshot persistence. Only plain
// open/create/exists/remove/rename primitives are required.
type Store interface {
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)
	Exists(path string) bool
	Remove(path string) error
	Rename(oldPath, newPath string) error
}

// OSStore backs Store with the local filesystem.
type OSStore struct{}

func (OSStore) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (OSStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (OSStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSStore) Remove(path string) error {
	return os.Remove(path)
}

func (OSStore) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}
