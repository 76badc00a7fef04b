package vectordb

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ErrDimensionMismatch is returned when a vector's width differs from the index width.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Hit is one search result: the insertion position of the stored vector and
// its distance to the query. Smaller is closer.
type Hit struct {
	Position int
	Distance float32
}

// Index is a position-addressed nearest-neighbour index.
type Index interface {
	// Reset drops all vectors.
	Reset()

	// Add appends vectors in order. Either all vectors are added or none.
	Add(vectors [][]float32) error

	// Search returns up to k hits ordered by ascending distance, ties in
	// insertion order. k larger than Len returns every vector; k <= 0 returns none.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Len returns the number of stored vectors.
	Len() int
}

// Backend names an Index implementation.
type Backend string

const (
	BackendFlat    Backend = "flat"
	BackendChromem Backend = "chromem"
)

// New creates an empty index of the given backend. ef is only used by the
// chromem backend and may be nil.
func New(backend Backend, dims int, ef chromem.EmbeddingFunc) (Index, error) {
	switch backend {
	case BackendFlat, "":
		return NewFlat(dims), nil
	case BackendChromem:
		return NewChromemIndex(dims, ef), nil
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", backend)
	}
}

func checkDims(want int, v []float32) error {
	if len(v) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), want)
	}
	return nil
}
