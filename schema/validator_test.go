package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemaIsJSON(t *testing.T) {
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(Schema(), &doc))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", doc["$schema"])
}

func TestValidate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr string
	}{
		{
			name: "minimal",
			data: map[string]interface{}{},
		},
		{
			name: "full",
			data: map[string]interface{}{
				"theme":          "gruvbox",
				"icons":          "none",
				"separator":      " ",
				"retry_interval": int64(5),
				"logging":        map[string]interface{}{"level": "debug", "file": map[string]interface{}{"enabled": true}},
				"daemon":         map[string]interface{}{"watch": true, "debounce_ms": 200},
				"block": []interface{}{
					map[string]interface{}{"block": "pamac", "interval": 600},
					map[string]interface{}{"block": "pamac", "interval": "10m"},
				},
			},
		},
		{
			name:    "unknown top-level key",
			data:    map[string]interface{}{"colour": "red"},
			wantErr: "additionalProperties",
		},
		{
			name:    "block without kind",
			data:    map[string]interface{}{"block": []interface{}{map[string]interface{}{"interval": 5}}},
			wantErr: "/block/0",
		},
		{
			name:    "unknown icon set",
			data:    map[string]interface{}{"icons": "emoji"},
			wantErr: "/icons",
		},
		{
			name:    "negative interval",
			data:    map[string]interface{}{"block": []interface{}{map[string]interface{}{"block": "pamac", "interval": -1}}},
			wantErr: "/block/0/interval",
		},
		{
			name:    "malformed duration",
			data:    map[string]interface{}{"retry_interval": "soon"},
			wantErr: "/retry_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
