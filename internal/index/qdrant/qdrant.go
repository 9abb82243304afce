// Package qdrant is a minimal REST client backing the vector index with
// a Qdrant collection using cosine distance and an HNSW graph.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"svcsearch/internal/domain"
)

// Index talks to one Qdrant collection. Qdrant point ids must be UUIDs
// or integers, so the catalog's string ids are mapped to deterministic
// SHA1 UUIDs; re-upserting a document therefore replaces its point.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client
}

// Config contains connection details for a Qdrant instance.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// NewIndex creates a Qdrant-backed index client. No request is made
// until DefineSchema.
func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

// DefineSchema creates the collection if missing and verifies the vector
// size of an existing one. Safe to call on every startup.
func (x *Index) DefineSchema(ctx context.Context, schema domain.IndexSchema) error {
	if schema.VectorField.Dimensions <= 0 {
		return fmt.Errorf("%w: schema declares %d dimensions", domain.ErrSchemaMismatch, schema.VectorField.Dimensions)
	}
	x.collection = schema.Name
	x.dimensions = schema.VectorField.Dimensions

	existing, found, err := x.collectionSize(ctx)
	if err != nil {
		return err
	}
	if found {
		if existing != schema.VectorField.Dimensions {
			return fmt.Errorf("%w: collection %s holds %d-dimensional vectors, schema declares %d",
				domain.ErrSchemaMismatch, schema.Name, existing, schema.VectorField.Dimensions)
		}
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     schema.VectorField.Dimensions,
			"distance": "Cosine",
		},
		"hnsw_config": map[string]any{
			"m":            16,
			"ef_construct": 100,
		},
	}
	return x.putJSON(ctx, fmt.Sprintf("%s/collections/%s", x.url, x.collection), body)
}

// Upsert writes the whole batch in one call with wait=true, so the
// points are searchable once it returns.
func (x *Index) Upsert(ctx context.Context, docs []domain.Document) error {
	if x.collection == "" {
		return fmt.Errorf("%w: schema not defined", domain.ErrIndex)
	}
	if len(docs) == 0 {
		return nil
	}
	points := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		if len(d.Vector) != x.dimensions {
			return fmt.Errorf("%w: document %s has %d dimensions, schema declares %d",
				domain.ErrSchemaMismatch, d.ID, len(d.Vector), x.dimensions)
		}
		points = append(points, map[string]any{
			"id":     pointID(d.ID),
			"vector": d.Vector,
			"payload": map[string]any{
				domain.FieldID:          d.ID,
				domain.FieldServiceName: d.Name,
				domain.FieldDescription: d.Description,
			},
		})
	}
	body := map[string]any{"points": points}
	return x.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", x.url, x.collection), body)
}

// Query runs a nearest-neighbor search, projecting only the requested
// payload fields. Qdrant's score scale is reported as-is.
func (x *Index) Query(ctx context.Context, vector []float32, k int, projectFields []string) ([]domain.QueryResult, error) {
	if x.collection == "" {
		return nil, fmt.Errorf("%w: schema not defined", domain.ErrIndex)
	}
	if k <= 0 {
		return nil, nil
	}
	var withPayload any = true
	if len(projectFields) > 0 {
		withPayload = projectFields
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": withPayload,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := x.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", x.url, x.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.QueryResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		qr := domain.QueryResult{Score: r.Score}
		if v, ok := r.Payload[domain.FieldServiceName].(string); ok {
			qr.Name = v
		}
		if v, ok := r.Payload[domain.FieldDescription].(string); ok {
			qr.Description = v
		}
		results = append(results, qr)
	}
	return results, nil
}

// collectionSize reads the vector size of the collection, reporting
// found=false on a 404.
func (x *Index) collectionSize(ctx context.Context) (size int, found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", x.url, x.collection), nil)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}
	x.auth(req)
	resp, err := x.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode >= 300 {
		return 0, false, fmt.Errorf("%w: qdrant GET collection failed: %s", domain.ErrIndex, resp.Status)
	}
	var out struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}
	return out.Result.Config.Params.Vectors.Size, true, nil
}

func (x *Index) putJSON(ctx context.Context, url string, body any) error {
	return x.sendJSON(ctx, http.MethodPut, url, body, nil)
}

func (x *Index) postJSON(ctx context.Context, url string, body any, out any) error {
	return x.sendJSON(ctx, http.MethodPost, url, body, out)
}

func (x *Index) sendJSON(ctx context.Context, method, url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}
	req.Header.Set("Content-Type", "application/json")
	x.auth(req)
	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: qdrant %s %s failed: %s", domain.ErrIndex, method, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIndex, err)
		}
	}
	return nil
}

func (x *Index) auth(req *http.Request) {
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
}

// pointID maps a document id to the UUID form Qdrant requires. SHA1 in a
// fixed namespace keeps the mapping stable across runs.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

var _ domain.VectorIndex = (*Index)(nil)
