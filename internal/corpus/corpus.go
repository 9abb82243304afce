// Package corpus reads the catalog file produced by the external
// generator tool: a JSON array of {serviceName, description} records.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"svcsearch/internal/domain"
)

// Load reads and decodes the whole corpus file. The file must decode
// fully; a missing file or malformed JSON fails the ingestion run before
// any network call happens.
func Load(path string) ([]domain.ServiceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorpus, err)
	}
	var records []domain.ServiceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrCorpus, path, err)
	}
	return records, nil
}
