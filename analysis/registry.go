package analysis

import (
	"fmt"
	"sync"
)

// Entry is one saved result and its id
type Entry struct {
	ID     int
	Result *Result
}

// Registry holds the saved results of a session. Ids start at 1 and are
// never reused, even after removal.
type Registry struct {
	mu       sync.Mutex
	entries  []Entry
	inserted int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Insert stores an independent copy of result and returns its id
func (r *Registry) Insert(result *Result) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inserted++
	r.entries = append(r.entries, Entry{ID: r.inserted, Result: result.Clone()})
	return r.inserted
}

// Remove deletes id and reports whether it was present
func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Get returns a copy of the result saved under id
func (r *Registry) Get(id int) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.ID == id {
			return e.Result.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// List returns copies of every entry in insertion order
func (r *Registry) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{ID: e.ID, Result: e.Result.Clone()}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// NextColor picks the palette entry for the next saved result from the
// current registry size, so removals never desynchronise the cycle.
func (r *Registry) NextColor(palette []string) string {
	if len(palette) == 0 {
		return ""
	}
	return palette[r.Len()%len(palette)]
}
