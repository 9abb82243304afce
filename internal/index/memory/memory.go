// Package memory is an in-process vector index using brute-force cosine
// similarity. Results with equal scores are ordered by ascending id, so
// rankings are fully deterministic; that makes this backend the one
// tests assert ordering against.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"svcsearch/internal/domain"
)

// Index stores documents keyed by id. Upsert replaces the whole document
// for an existing id, last write wins.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	docs       map[string]domain.Document
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{docs: make(map[string]domain.Document)}
}

// DefineSchema records the declared dimensionality. It is create-or-update:
// repeated calls with the same schema leave the index untouched, while a
// dimensionality change against stored documents is a schema mismatch.
func (x *Index) DefineSchema(_ context.Context, schema domain.IndexSchema) error {
	if schema.VectorField.Dimensions <= 0 {
		return fmt.Errorf("%w: schema declares %d dimensions", domain.ErrSchemaMismatch, schema.VectorField.Dimensions)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimensions != 0 && x.dimensions != schema.VectorField.Dimensions && len(x.docs) > 0 {
		return fmt.Errorf("%w: index holds %d-dimensional vectors, schema declares %d",
			domain.ErrSchemaMismatch, x.dimensions, schema.VectorField.Dimensions)
	}
	x.dimensions = schema.VectorField.Dimensions
	return nil
}

// Upsert inserts or replaces documents by id in one batch.
func (x *Index) Upsert(_ context.Context, docs []domain.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimensions == 0 {
		return fmt.Errorf("%w: schema not defined", domain.ErrIndex)
	}
	for _, d := range docs {
		if len(d.Vector) != x.dimensions {
			return fmt.Errorf("%w: document %s has %d dimensions, schema declares %d",
				domain.ErrSchemaMismatch, d.ID, len(d.Vector), x.dimensions)
		}
	}
	for _, d := range docs {
		x.docs[d.ID] = d
	}
	return nil
}

// Query returns up to k documents ranked by descending cosine score.
// Vectors are compared as-is; normalized inputs make this cosine
// similarity. projectFields is ignored, every stored field is local.
func (x *Index) Query(_ context.Context, vector []float32, k int, _ []string) ([]domain.QueryResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	type scored struct {
		id    string
		doc   domain.Document
		score float64
	}
	candidates := make([]scored, 0, len(x.docs))
	for id, d := range x.docs {
		candidates = append(candidates, scored{id: id, doc: d, score: dot(d.Vector, vector)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]domain.QueryResult, 0, k)
	for _, c := range candidates[:k] {
		results = append(results, domain.QueryResult{
			Name:        c.doc.Name,
			Description: c.doc.Description,
			Score:       c.score,
		})
	}
	return results, nil
}

// Count reports the number of stored documents.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

var _ domain.VectorIndex = (*Index)(nil)
