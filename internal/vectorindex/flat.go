// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/similarity"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidK is returned when Query is called with a negative k.
	ErrInvalidK = errors.New("k must be non-negative")
)

type entry struct {
	id  int64
	seq uint64
	vec []float32
}

// FlatIndex is a brute-force L2 index. The zero value is not usable; call New.
type FlatIndex struct {
	name string
	dim  int

	mu      sync.RWMutex
	entries map[int64]*entry
	nextSeq uint64
}

// New creates an empty index for vectors of length dim. name labels the
// index in metrics ("posts", "users").
func New(name string, dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	return &FlatIndex{
		name:    name,
		dim:     dim,
		entries: make(map[int64]*entry),
	}, nil
}

// Name returns the metrics label of the index.
func (f *FlatIndex) Name() string { return f.name }

// Dimension returns the configured vector length.
func (f *FlatIndex) Dimension() int { return f.dim }

// Add stores vec under id, replacing any existing entry for id.
func (f *FlatIndex) Add(id int64, vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("%w: add id %d: got %d, want %d", ErrDimensionMismatch, id, len(vec), f.dim)
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)

	f.mu.Lock()
	_, replaced := f.entries[id]
	f.nextSeq++
	f.entries[id] = &entry{id: id, seq: f.nextSeq, vec: stored}
	n := len(f.entries)
	f.mu.Unlock()

	op := "add"
	if replaced {
		op = "replace"
	}
	metrics.RecordIndexOperation(f.name, op)
	metrics.RecordIndexSize(f.name, n)
	return nil
}

// Delete removes id. It reports whether an entry was removed.
func (f *FlatIndex) Delete(id int64) bool {
	f.mu.Lock()
	_, ok := f.entries[id]
	if ok {
		delete(f.entries, id)
	}
	n := len(f.entries)
	f.mu.Unlock()

	if ok {
		metrics.RecordIndexOperation(f.name, "delete")
		metrics.RecordIndexSize(f.name, n)
	}
	return ok
}

// Query returns up to k ids nearest to vec.
func (f *FlatIndex) Query(vec []float32, k int) ([]int64, error) {
	if len(vec) != f.dim {
		return nil, fmt.Errorf("%w: query: got %d, want %d", ErrDimensionMismatch, len(vec), f.dim)
	}
	if k < 0 {
		return nil, ErrInvalidK
	}
	metrics.RecordIndexOperation(f.name, "query")

	type scored struct {
		id   int64
		seq  uint64
		dist float64
	}

	f.mu.RLock()
	candidates := make([]scored, 0, len(f.entries))
	for _, e := range f.entries {
		candidates = append(candidates, scored{id: e.id, seq: e.seq, dist: similarity.L2Squared(vec, e.vec)})
	}
	f.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].seq < candidates[j].seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	ids := make([]int64, k)
	for i := 0; i < k; i++ {
		ids[i] = candidates[i].id
	}
	return ids, nil
}

// Reconstruct returns a copy of the vector stored for id.
func (f *FlatIndex) Reconstruct(id int64) ([]float32, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	e, ok := f.entries[id]
	if !ok {
		return nil, false
	}
	out := make([]float32, len(e.vec))
	copy(out, e.vec)
	return out, true
}

// Contains reports whether id is live.
func (f *FlatIndex) Contains(id int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entries[id]
	return ok
}

// Len returns the number of live entries.
func (f *FlatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// IDs returns the live ids in insertion order.
func (f *FlatIndex) IDs() []int64 {
	f.mu.RLock()
	all := make([]*entry, 0, len(f.entries))
	for _, e := range f.entries {
		all = append(all, e)
	}
	f.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	ids := make([]int64, len(all))
	for i, e := range all {
		ids[i] = e.id
	}
	return ids
}

// Reset drops every entry.
func (f *FlatIndex) Reset() {
	f.mu.Lock()
	f.entries = make(map[int64]*entry)
	f.mu.Unlock()
	metrics.RecordIndexSize(f.name, 0)
}
