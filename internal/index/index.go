// Package index is an in-memory flat vector index and the query engine
// that answers prompts from the chunks it retrieves.
package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Chunk is one stored piece of source text.
type Chunk struct {
	Source string
	Text   string
}

// Hit is a search result; smaller Distance is closer.
type Hit struct {
	Chunk    Chunk
	Distance float32
}

// Flat is an exhaustive squared-L2 index. It is safe for concurrent use.
type Flat struct {
	dim int

	mu      sync.RWMutex
	vectors [][]float32
	chunks  []Chunk
}

// NewFlat returns an empty index for vectors of length dim.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored chunks.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.chunks)
}

// Add stores chunks with their embeddings. Nothing is stored if any vector
// has the wrong dimension.
func (f *Flat) Add(chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("got %d chunks and %d vectors", len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has %d, want %d", ErrDimensionMismatch, i, len(v), f.dim)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, chunks...)
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search returns up to k chunks nearest to q, closest first. A k of zero
// or less yields no hits.
func (f *Flat) Search(q []float32, k int) ([]Hit, error) {
	if len(q) != f.dim {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrDimensionMismatch, len(q), f.dim)
	}
	if k <= 0 {
		return []Hit{}, nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Chunk: f.chunks[i], Distance: l2(q, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func l2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
