package cache

import "time"

// Store is the cache contract used by the analytics engine and the HTTP
// layer to memoize derived results between ledger revisions.
type Store[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Purge drops every entry
	Purge()

	// Len returns the current number of items in the cache
	Len() int
}

// Sweeper is implemented by caches that can drop expired entries on demand.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps expired entries out of registered caches.
// Entries keyed by ledger revision never become valid again once the
// revision moves on, so without the janitor they would sit in memory
// until LRU eviction pushed them out.
type Janitor struct {
	caches []Sweeper
	stop   chan struct{}
	done   chan struct{}
}

// NewJanitor creates a janitor with no registered caches.
func NewJanitor() *Janitor {
	return &Janitor{
		caches: make([]Sweeper, 0),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache to the sweep rotation.
func (j *Janitor) Register(c Sweeper) {
	j.caches = append(j.caches, c)
}

// Start begins sweeping registered caches at the given interval.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range j.caches {
				c.Sweep()
			}
		case <-j.stop:
			return
		}
	}
}

// Stop halts the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
