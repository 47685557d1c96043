package credential

import "sync"

// Credential is the basic auth pair attached to every request the client
// issues. There is a single process wide snapshot, no per-entry override.
type Credential struct {
	User string
	Pass string
}

var (
	lck   sync.RWMutex
	cur   Credential
	inUse bool
)

// Set installs the snapshot. The caller owns the lifecycle, typically set on
// login and cleared on logout, never mutated mid-request.
func Set(user string, pass string) {
	lck.Lock()
	defer lck.Unlock()
	cur = Credential{User: user, Pass: pass}
	inUse = true
}

// Clear drops the snapshot, subsequent operations fail without touching the
// network.
func Clear() {
	lck.Lock()
	defer lck.Unlock()
	cur = Credential{}
	inUse = false
}

// Current returns the snapshot, false when unset.
func Current() (Credential, bool) {
	lck.RLock()
	defer lck.RUnlock()
	return cur, inUse
}
