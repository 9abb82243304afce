// Package service owns the two operations of the application core:
// ingesting the catalog into the vector index and answering semantic
// queries against it.
package service

import (
	"context"
	"fmt"

	"svcsearch/internal/domain"
)

// CatalogService wires the embedding provider and the vector index.
// All calls are sequential; no two provider or index calls are ever in
// flight at once.
type CatalogService struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	schema   domain.IndexSchema
}

// New creates a catalog service for the given schema.
func New(embedder domain.Embedder, index domain.VectorIndex, schema domain.IndexSchema) *CatalogService {
	return &CatalogService{embedder: embedder, index: index, schema: schema}
}

// IngestRecords defines the index schema, embeds every record in corpus
// order, and upserts the whole batch in a single call. If any embedding
// fails the run aborts before anything is written; there is no partial
// commit and no resume point. Returns the number of upserted documents.
func (s *CatalogService) IngestRecords(ctx context.Context, records []domain.ServiceRecord) (int, error) {
	if err := s.index.DefineSchema(ctx, s.schema); err != nil {
		return 0, err
	}
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		vec, err := s.embedder.Embed(ctx, rec.Description)
		if err != nil {
			return 0, fmt.Errorf("embed %q: %w", rec.Name, err)
		}
		if len(vec) != s.schema.VectorField.Dimensions {
			return 0, fmt.Errorf("%w: %q embedded to %d dimensions, schema declares %d",
				domain.ErrSchemaMismatch, rec.Name, len(vec), s.schema.VectorField.Dimensions)
		}
		docs = append(docs, domain.Document{
			ID:          domain.DeriveID(rec.Name),
			Name:        rec.Name,
			Description: rec.Description,
			Vector:      vec,
		})
	}
	if err := s.index.Upsert(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Query embeds the text and returns up to topK catalog entries ranked by
// the index's similarity score, projecting the name and description.
func (s *CatalogService) Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.index.Query(ctx, vec, topK, []string{domain.FieldServiceName, domain.FieldDescription})
}
