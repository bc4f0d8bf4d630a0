package session

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fjod/go_foodcourt/internal/cart"
)

const (
	// DefaultTTL is how long an untouched cart survives
	DefaultTTL = 2 * time.Hour

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute

	shardCount = 32
)

type entry struct {
	engine   *cart.Engine
	lastSeen time.Time
	checkout chan struct{} // one slot, held while the cart is being checked out
}

func (s *Store) newEntry() *entry {
	return &entry{
		engine:   cart.NewEngine(cart.WithPolicy(s.policy)),
		checkout: make(chan struct{}, 1),
	}
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Store maps session ids to cart engines. Sessions are spread over shards by
// xxhash so unrelated shoppers rarely contend on the same lock.
type Store struct {
	shards [shardCount]*shard
	policy cart.Policy
	ttl    time.Duration
	now    func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

type Option func(*Store)

// WithTTL sets the idle timeout. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPolicy sets the policy given to newly created carts.
func WithPolicy(p cart.Policy) Option {
	return func(s *Store) {
		if p != nil {
			s.policy = p
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store and starts its cleanup loop. Call Close to stop it.
func NewStore(opts ...Option) *Store {
	s := &Store{
		policy:      cart.AllowAll{},
		ttl:         DefaultTTL,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *Store) shardFor(sessionID string) *shard {
	return s.shards[xxhash.Sum64String(sessionID)%shardCount]
}

// Get returns the cart for sessionID, creating an empty one on first use.
func (s *Store) Get(sessionID string) *cart.Engine {
	return s.touch(sessionID).engine
}

func (s *Store) touch(sessionID string) *entry {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[sessionID]
	if !ok {
		e = s.newEntry()
		sh.entries[sessionID] = e
	}
	e.lastSeen = s.now()
	return e
}

// LockCheckout returns the cart for sessionID once no other checkout of the
// same session is running. The caller must call unlock when done. Cart edits
// are not blocked while the lock is held.
func (s *Store) LockCheckout(ctx context.Context, sessionID string) (engine *cart.Engine, unlock func(), err error) {
	e := s.touch(sessionID)
	select {
	case e.checkout <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	var once sync.Once
	return e.engine, func() { once.Do(func() { <-e.checkout }) }, nil
}

// Peek returns the cart for sessionID without creating or touching it.
func (s *Store) Peek(sessionID string) (*cart.Engine, bool) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[sessionID]
	if !ok {
		return nil, false
	}
	return e.engine, true
}

func (s *Store) Delete(sessionID string) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.entries, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireIdle()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireIdle drops sessions not seen within the TTL and returns how many were removed.
func (s *Store) expireIdle() int {
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, e := range sh.entries {
			if e.lastSeen.Before(cutoff) {
				delete(sh.entries, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Close stops the background cleanup goroutine.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
	s.wg.Wait()
}
