package config

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

var durationType = reflect.TypeOf(time.Duration(0))

func durationSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Seconds as a number, or a duration string such as 10m",
		OneOf: []*jsonschema.Schema{
			{Type: "number", Minimum: json.Number("0")},
			{Type: "string", Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`},
		},
	}
}

// JSONSchema describes a [[block]] record: a required kind plus options
// that only the kind's constructor can check.
func (BlockConfig) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set(KindKey, &jsonschema.Schema{
		Type:        "string",
		Description: "Kind of the block, for example pamac",
	})
	props.Set("interval", durationSchema())
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{KindKey},
	}
}

// GenerateSchema reflects Config into the JSON Schema that the schema
// package embeds.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == durationType {
				return durationSchema()
			}
			return nil
		},
	}

	schema := r.Reflect(&Config{})
	schema.Title = "Statusbar Configuration"
	schema.Description = "Configuration for the statusbar runner and daemon."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
