package vectordb

import (
	"context"
	"sort"
)

// FlatIndex compares the query against every stored vector by squared
// Euclidean distance. It is exact and linear in the number of vectors.
// Add and Search must not run concurrently.
type FlatIndex struct {
	dims    int
	vectors [][]float32
}

// NewFlat creates an empty flat index. dims <= 0 fixes the width from the
// first added vector.
func NewFlat(dims int) *FlatIndex {
	return &FlatIndex{dims: dims}
}

func (f *FlatIndex) Reset() {
	f.vectors = nil
}

func (f *FlatIndex) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	dims := f.dims
	if dims <= 0 {
		dims = len(vectors[0])
	}
	for _, v := range vectors {
		if err := checkDims(dims, v); err != nil {
			return err
		}
	}

	f.dims = dims
	for _, v := range vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		f.vectors = append(f.vectors, cp)
	}
	return nil
}

func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 || len(f.vectors) == 0 {
		return []Hit{}, nil
	}
	if err := checkDims(f.dims, query); err != nil {
		return nil, err
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Position: i, Distance: squaredL2(query, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (f *FlatIndex) Len() int {
	return len(f.vectors)
}

// Dimensions returns the vector width, or 0 before the first Add.
func (f *FlatIndex) Dimensions() int {
	return f.dims
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
