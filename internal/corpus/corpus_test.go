package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcsearch/internal/domain"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCorpus(t, `[
		{"serviceName": "CosmosDB", "description": "A globally distributed multi-model database."},
		{"serviceName": "Azure Functions", "description": "Event-driven serverless compute."}
	]`)

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CosmosDB", records[0].Name)
	assert.Equal(t, "A globally distributed multi-model database.", records[0].Description)
	assert.Equal(t, "Azure Functions", records[1].Name)
}

func TestLoad_EmptyArray(t *testing.T) {
	records, err := Load(writeCorpus(t, `[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, domain.ErrCorpus)
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load(writeCorpus(t, `[{"serviceName": "x"`))
	assert.ErrorIs(t, err, domain.ErrCorpus)
}

func TestLoad_WrongShape(t *testing.T) {
	_, err := Load(writeCorpus(t, `{"serviceName": "x"}`))
	assert.ErrorIs(t, err, domain.ErrCorpus)
}
