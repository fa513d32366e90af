package config

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/grovetools/statusbar/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyNames(t *testing.T, data []byte) []string {
	t.Helper()
	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	names := make([]string, 0, len(doc.Properties))
	for name := range doc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	for _, key := range []string{"$schema", "type", "title", "properties"} {
		assert.Contains(t, parsed, key)
	}
	assert.Equal(t, false, parsed["additionalProperties"])
	assert.NotContains(t, parsed, "required", "every top-level key is optional")
}

func TestGeneratedSchemaMatchesEmbedded(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	assert.Equal(t, propertyNames(t, schema.Schema()), propertyNames(t, data))
	assert.Equal(t,
		[]string{"block", "daemon", "icons", "logging", "retry_interval", "separator", "theme"},
		propertyNames(t, data))
}
