package graph

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
)

// documentSchema is the structural JSON schema every serialized document
// must satisfy before the triple walk: a tree of objects in which every
// object carries a non-empty "@type" and "@id", and every property value
// is a scalar, a nested object, or a sequence of those.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "node": {
      "type": "object",
      "required": ["@type", "@id"],
      "properties": {
        "@type": {"type": "string", "minLength": 1},
        "@id": {"type": "string", "minLength": 1}
      },
      "additionalProperties": {"$ref": "#/definitions/value"}
    },
    "value": {
      "anyOf": [
        {"type": ["string", "number", "boolean", "null"]},
        {"$ref": "#/definitions/node"},
        {"type": "array", "items": {"$ref": "#/definitions/value"}}
      ]
    }
  },
  "$ref": "#/definitions/node"
}`

// validateDocument checks raw document bytes against documentSchema.
func validateDocument(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return errors.WrapFatal(err, "graph", "validateDocument", "run schema validation")
	}

	if !result.Valid() {
		msg := ""
		for _, desc := range result.Errors() {
			msg += fmt.Sprintf("; %s: %s", desc.Field(), desc.Description())
		}
		return errors.WrapFatal(
			fmt.Errorf("%w%s", ErrSchemaViolation, msg),
			"graph", "validateDocument", "validate document structure")
	}
	return nil
}
