package blacklist

import "sync"

// Blacklist holds known-bad token mints and developer wallets. It only ever
// grows: nothing in the process removes entries. Reads and writes may come
// from different goroutines (scan loop, operator commands), so access is
// serialized here.
type Blacklist struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
	devs   map[string]struct{}
}

// New builds a blacklist from seed addresses. Empty strings are ignored.
func New(tokens, devs []string) *Blacklist {
	b := &Blacklist{
		tokens: make(map[string]struct{}, len(tokens)),
		devs:   make(map[string]struct{}, len(devs)),
	}
	for _, addr := range tokens {
		if addr != "" {
			b.tokens[addr] = struct{}{}
		}
	}
	for _, addr := range devs {
		if addr != "" {
			b.devs[addr] = struct{}{}
		}
	}
	return b
}

// AddToken records a token mint. It reports whether the entry is new.
func (b *Blacklist) AddToken(addr string) bool {
	if addr == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tokens[addr]; ok {
		return false
	}
	b.tokens[addr] = struct{}{}
	return true
}

// AddDev records a developer wallet. It reports whether the entry is new.
func (b *Blacklist) AddDev(addr string) bool {
	if addr == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.devs[addr]; ok {
		return false
	}
	b.devs[addr] = struct{}{}
	return true
}

// Size returns the current number of token and developer entries.
func (b *Blacklist) Size() (tokens, devs int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tokens), len(b.devs)
}

// Snapshot returns an immutable point-in-time view for one vetting pass.
// Entries added after the snapshot are not visible through it, so a single
// evaluation always sees a consistent blacklist.
func (b *Blacklist) Snapshot() View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v := View{
		tokens: make(map[string]struct{}, len(b.tokens)),
		devs:   make(map[string]struct{}, len(b.devs)),
	}
	for addr := range b.tokens {
		v.tokens[addr] = struct{}{}
	}
	for addr := range b.devs {
		v.devs[addr] = struct{}{}
	}
	return v
}

// View is a frozen copy of the blacklist used by the vetting pipeline.
type View struct {
	tokens map[string]struct{}
	devs   map[string]struct{}
}

// HasToken reports whether the token mint was blacklisted at snapshot time.
func (v View) HasToken(addr string) bool {
	_, ok := v.tokens[addr]
	return ok
}

// HasDev reports whether the developer wallet was blacklisted at snapshot time.
func (v View) HasDev(addr string) bool {
	_, ok := v.devs[addr]
	return ok
}
