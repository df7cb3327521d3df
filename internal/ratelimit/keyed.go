package ratelimit

import (
	"sync"
	"time"
)

// inactiveAfter is how long an idle key's bucket is kept before cleanup
const inactiveAfter = 30 * time.Minute

// KeyedLimiter tracks a separate token bucket per key (client IP or
// session ID) and cleans up buckets that have gone idle.
type KeyedLimiter struct {
	mu         sync.Mutex
	entries    map[string]*keyedEntry
	burst      float64
	refillRate float64
	stopCh     chan struct{}
	stopOnce   sync.Once
}

type keyedEntry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewKeyed creates a per-key rate limiter.
// Call Stop when done to release the cleanup goroutine.
func NewKeyed(burst, refillRate float64) *KeyedLimiter {
	kl := &KeyedLimiter{
		entries:    make(map[string]*keyedEntry),
		burst:      burst,
		refillRate: refillRate,
		stopCh:     make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow reports whether a request for key is allowed, consuming a token
// when it is.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	entry, ok := kl.entries[key]
	if !ok {
		entry = &keyedEntry{limiter: New(kl.burst, kl.refillRate)}
		kl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	kl.mu.Unlock()

	return entry.limiter.Allow()
}

// Len returns the number of tracked keys
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}

// Stop terminates the background cleanup goroutine
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

func (kl *KeyedLimiter) cleanup() {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	cutoff := time.Now().Add(-inactiveAfter)
	for key, entry := range kl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(kl.entries, key)
		}
	}
}
