package engine

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// flowSchemaJSON — минимальная схема документа flow.
//
// Обязательны name (непустая строка) и steps (массив узлов с id и type).
// Конфигурация узлов здесь не проверяется: её форма зависит от type
// и проверяется в DecodeNodeConfig.
const flowSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "steps"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "createdAt": {"type": "string"},
    "updatedAt": {"type": "string"},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"},
          "label": {"type": "string"},
          "config": {"type": ["object", "null"]},
          "position": {
            "type": "object",
            "properties": {
              "x": {"type": "number"},
              "y": {"type": "number"}
            }
          }
        }
      }
    }
  }
}`

// flowSchema — скомпилированная схема. Компилируется один раз при загрузке пакета.
var flowSchema = mustCompileSchema(flowSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile flow schema: %v", err))
	}
	return schema
}

// validateDocument проверяет распарсенный документ по схеме flow.
func validateDocument(doc any) error {
	result, err := flowSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return NewValidationError("", "", fmt.Sprintf("%s: %v", ErrInvalidDocument, err), ErrInvalidDocument)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return NewValidationError("", "",
			fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(details, "; ")), ErrInvalidDocument)
	}

	return nil
}
