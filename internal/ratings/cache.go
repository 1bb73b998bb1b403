package ratings

import (
	"sync"

	"github.com/vmunix/reelrate/internal/tmdb"
)

// Cache holds the guest session's rated movies in list order together with
// an id->rating index. The two views are always updated together.
// An application context owns exactly one Cache.
type Cache struct {
	mu      sync.RWMutex
	entries []tmdb.RatedMovie
	index   map[int64]float64
	loaded  bool
}

// NewCache creates an empty, unloaded cache.
func NewCache() *Cache {
	return &Cache{index: make(map[int64]float64)}
}

// Rating returns the cached rating for a movie.
func (c *Cache) Rating(movieID int64) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.index[movieID]
	return v, ok
}

// Entries returns a copy of the rated movies in list order.
func (c *Cache) Entries() []tmdb.RatedMovie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]tmdb.RatedMovie, len(c.entries))
	copy(out, c.entries)
	return out
}

// Ratings returns a copy of the id->rating index.
func (c *Cache) Ratings() map[int64]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int64]float64, len(c.index))
	for id, v := range c.index {
		out[id] = v
	}
	return out
}

// Len returns the number of rated movies.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Loaded reports whether the remote listing has been fetched completely.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// upsert updates the rating of a cached movie in place or appends it.
func (c *Cache) upsert(m tmdb.Movie, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index[m.ID] = value
	for i := range c.entries {
		if c.entries[i].ID == m.ID {
			c.entries[i].Rating = value
			return
		}
	}
	c.entries = append(c.entries, tmdb.RatedMovie{Movie: m, Rating: value})
}

// remove drops a movie from both views.
func (c *Cache) remove(movieID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.index, movieID)
	for i := range c.entries {
		if c.entries[i].ID == movieID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// merge appends a page of remote entries. Movies already present were
// changed locally since the fetch started and keep their local value.
func (c *Cache) merge(page []tmdb.RatedMovie) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range page {
		if _, ok := c.index[m.ID]; ok {
			continue
		}
		c.index[m.ID] = m.Rating
		c.entries = append(c.entries, m)
	}
}

func (c *Cache) markLoaded() {
	c.mu.Lock()
	c.loaded = true
	c.mu.Unlock()
}
