package domain

import (
	"context"
	"errors"
	"strings"
)

// ServiceRecord is one entry of the externally generated catalog corpus.
type ServiceRecord struct {
	Name        string `json:"serviceName"`
	Description string `json:"description"`
}

// Document is the stored form of a catalog entry. Vector always has the
// dimensionality the index schema declares; a mismatch is a contract
// violation, not a runtime case.
type Document struct {
	ID          string
	Name        string
	Description string
	Vector      []float32
}

// QueryResult is one ranked match for a query. Results are ordered by
// descending score; the score scale is whatever the index engine reports.
type QueryResult struct {
	Name        string
	Description string
	Score       float64
}

// FieldType enumerates the non-vector field types an index schema can hold.
type FieldType string

const (
	FieldTypeString FieldType = "string"
)

// Field describes a plain field of the index schema.
type Field struct {
	Name       string
	Type       FieldType
	Key        bool
	Searchable bool
}

// VectorField describes the vector field of the index schema. Algorithm
// names the approximate-nearest-neighbor configuration independently of
// the field, the way graph-based engines expect.
type VectorField struct {
	Name       string
	Dimensions int
	Algorithm  string
}

// IndexSchema declares the shape of the vector index. Defining it is
// create-or-update and safe to repeat on every startup.
type IndexSchema struct {
	Name        string
	Fields      []Field
	VectorField VectorField
}

// Embedder converts free text into a fixed-length numeric vector.
// One outbound call per invocation for remote implementations; no caching.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// VectorIndex stores documents with a vector field and answers
// nearest-neighbor queries.
type VectorIndex interface {
	DefineSchema(ctx context.Context, schema IndexSchema) error
	Upsert(ctx context.Context, docs []Document) error
	Query(ctx context.Context, vector []float32, k int, projectFields []string) ([]QueryResult, error)
}

// Failure classes. Nothing below is retried internally; every failure
// surfaces to the caller and ends the current run or query turn.
var (
	ErrConfiguration  = errors.New("invalid configuration")
	ErrCorpus         = errors.New("corpus unreadable")
	ErrEmbedding      = errors.New("embedding failed")
	ErrIndex          = errors.New("index operation failed")
	ErrSchemaMismatch = errors.New("vector dimensionality mismatch")
)

// Schema field names shared between the index backends and the corpus.
const (
	FieldID          = "id"
	FieldServiceName = "serviceName"
	FieldDescription = "description"
	FieldVector      = "descriptionVector"
)

// DeriveID builds the document key from a service name by removing every
// space character and nothing else: "Azure Functions" -> "AzureFunctions".
// Two records whose names differ only in spaces collide on id.
func DeriveID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// CatalogSchema is the index schema for the service catalog: a string key,
// the plain service name, the searchable description, and the description
// vector with an HNSW-style algorithm configuration.
func CatalogSchema(name string, dimensions int) IndexSchema {
	return IndexSchema{
		Name: name,
		Fields: []Field{
			{Name: FieldID, Type: FieldTypeString, Key: true},
			{Name: FieldServiceName, Type: FieldTypeString},
			{Name: FieldDescription, Type: FieldTypeString, Searchable: true},
		},
		VectorField: VectorField{
			Name:       FieldVector,
			Dimensions: dimensions,
			Algorithm:  "hnsw",
		},
	}
}
