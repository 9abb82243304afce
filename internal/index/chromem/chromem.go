// Package chromem backs the vector index with chromem-go, an embedded
// vector database. With a persistence path the index survives restarts;
// without one it lives in process memory.
package chromem

import (
	"context"
	"fmt"

	chromemgo "github.com/philippgille/chromem-go"

	"svcsearch/internal/domain"
)

// Index wraps one chromem collection. Embeddings are always supplied by
// the ingestion pipeline; chromem's own embedding function is never used.
type Index struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	dimensions int
}

// Config configures the chromem-backed index.
type Config struct {
	// Path enables on-disk persistence when non-empty.
	Path string
}

// NewIndex opens (or creates) the underlying database.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return &Index{db: chromemgo.NewDB()}, nil
	}
	db, err := chromemgo.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: open chromem db: %v", domain.ErrIndex, err)
	}
	return &Index{db: db}, nil
}

// DefineSchema creates the collection if missing. Safe to repeat; a
// dimensionality change against a non-empty collection is a schema
// mismatch.
func (x *Index) DefineSchema(_ context.Context, schema domain.IndexSchema) error {
	if schema.VectorField.Dimensions <= 0 {
		return fmt.Errorf("%w: schema declares %d dimensions", domain.ErrSchemaMismatch, schema.VectorField.Dimensions)
	}
	if x.collection != nil && x.dimensions != schema.VectorField.Dimensions && x.collection.Count() > 0 {
		return fmt.Errorf("%w: collection holds %d-dimensional vectors, schema declares %d",
			domain.ErrSchemaMismatch, x.dimensions, schema.VectorField.Dimensions)
	}
	c, err := x.db.GetOrCreateCollection(schema.Name, nil, rejectTextEmbedding)
	if err != nil {
		return fmt.Errorf("%w: create collection %s: %v", domain.ErrIndex, schema.Name, err)
	}
	x.collection = c
	x.dimensions = schema.VectorField.Dimensions
	return nil
}

// Upsert inserts or replaces documents by id in one batch. chromem keys
// documents by ID, so re-adding an id replaces the stored record.
func (x *Index) Upsert(ctx context.Context, docs []domain.Document) error {
	if x.collection == nil {
		return fmt.Errorf("%w: schema not defined", domain.ErrIndex)
	}
	if len(docs) == 0 {
		return nil
	}
	batch := make([]chromemgo.Document, 0, len(docs))
	for _, d := range docs {
		if len(d.Vector) != x.dimensions {
			return fmt.Errorf("%w: document %s has %d dimensions, schema declares %d",
				domain.ErrSchemaMismatch, d.ID, len(d.Vector), x.dimensions)
		}
		batch = append(batch, chromemgo.Document{
			ID:        d.ID,
			Content:   d.Description,
			Embedding: d.Vector,
			Metadata: map[string]string{
				domain.FieldServiceName: d.Name,
			},
		})
	}
	if err := x.collection.AddDocuments(ctx, batch, 1); err != nil {
		return fmt.Errorf("%w: upsert %d documents: %v", domain.ErrIndex, len(docs), err)
	}
	return nil
}

// Query returns up to k documents ranked by descending cosine similarity.
// chromem rejects result counts above the stored document count, so k is
// clamped first. projectFields is ignored, the collection is local.
func (x *Index) Query(ctx context.Context, vector []float32, k int, _ []string) ([]domain.QueryResult, error) {
	if x.collection == nil {
		return nil, fmt.Errorf("%w: schema not defined", domain.ErrIndex)
	}
	if stored := x.collection.Count(); k > stored {
		k = stored
	}
	if k <= 0 {
		return nil, nil
	}
	matches, err := x.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrIndex, err)
	}
	results := make([]domain.QueryResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.QueryResult{
			Name:        m.Metadata[domain.FieldServiceName],
			Description: m.Content,
			Score:       float64(m.Similarity),
		})
	}
	return results, nil
}

// rejectTextEmbedding is installed as the collection's embedding function.
// All vectors are precomputed by the pipeline, so reaching it means a
// document or query slipped through without one.
func rejectTextEmbedding(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: embeddings must be precomputed", domain.ErrIndex)
}

var _ domain.VectorIndex = (*Index)(nil)
