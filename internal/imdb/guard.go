package imdb

import "sync"

// guard is the single mutual-exclusion primitive serializing every public
// operation, snapshot I/O included. Acquisition blocks the caller until the
// guard is free; there is no timeout and no reader/writer distinction.
//
// On this platform the primitive cannot fail to initialize, so ok always
// reports true. The query exists for hosts where initialization can fail
// and the engine runs in a degraded, unserialized mode.
type guard struct {
	mu sync.Mutex
}

func (g *guard) lock()    { g.mu.Lock() }
func (g *guard) unlock()  { g.mu.Unlock() }
func (g *guard) ok() bool { return true }
