package model

import (
	"encoding/json"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"github.com/invopop/jsonschema"
)

// JSONSchemaFor reflects T into the inline JSON schema sent as the provider's
// response constraint. Every non-omitempty field is required.
func JSONSchemaFor[T any]() (JSONSchema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var value T
	schema := reflector.Reflect(value)

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	var schemaMap map[string]any
	err = json.Unmarshal(schemaJSON, &schemaMap)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")

	return schemaMap, nil
}
