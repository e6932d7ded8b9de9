package session

import "sync"

// laneLock provides per-session serialization: operations on the same
// session identifier run one at a time, while different identifiers
// proceed in parallel.
//
// A global mutex protects the lane map and is held only long enough to
// look up or create a lane. A lane is removed once nobody holds or waits
// on it, so the map never outgrows the set of in-flight sessions.
type laneLock struct {
	mu    sync.Mutex
	lanes map[string]*lane
}

// lane counts goroutines that hold or are waiting on its mutex.
type lane struct {
	mu   sync.Mutex
	refs int
}

func newLaneLock() *laneLock {
	return &laneLock{lanes: make(map[string]*lane)}
}

// acquire locks the lane for id. The caller must call release with the
// same id when done.
func (l *laneLock) acquire(id string) {
	l.mu.Lock()
	ln, ok := l.lanes[id]
	if !ok {
		ln = &lane{}
		l.lanes[id] = ln
	}
	ln.refs++
	l.mu.Unlock()

	// Lock outside the global mutex so other sessions are not blocked.
	ln.mu.Lock()
}

// release unlocks the lane for id.
func (l *laneLock) release(id string) {
	l.mu.Lock()
	ln, ok := l.lanes[id]
	if !ok {
		l.mu.Unlock()
		return
	}
	ln.refs--
	if ln.refs == 0 {
		delete(l.lanes, id)
	}
	l.mu.Unlock()

	ln.mu.Unlock()
}

// size returns the number of lanes currently held or awaited.
func (l *laneLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}
