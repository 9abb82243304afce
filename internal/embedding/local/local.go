// Package local provides a deterministic offline embedder. Tokens are
// hashed into a fixed number of buckets, so it honors the same
// fixed-dimensionality contract as a remote provider without any
// network call. Quality is bag-of-words level; it exists for offline
// use and for exercising the pipeline in tests.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"svcsearch/internal/domain"
)

// Embedder hashes stopword-filtered tokens into a fixed-length,
// L2-normalized vector. The same text always produces the same vector.
type Embedder struct {
	dimensions   int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder with the given dimensionality.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &Embedder{
		dimensions:   dimensions,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Dimensions returns the vector length every Embed call produces.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed computes the hashed bag-of-words embedding for the given text.
// Text with no usable tokens embeds to the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)
	total := 0
	for _, tok := range e.tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimensions]++
		total++
	}
	if total == 0 {
		return vec, nil
	}
	// L2 normalize
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "i", "need", "want",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var _ domain.Embedder = (*Embedder)(nil)
