package store

import (
	"fmt"
	"strings"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/xeipuuv/gojsonschema"
)

// answersSchema describes the persisted layout. Unknown fields are allowed
// so older binaries can read documents written by newer ones of the same
// schema version.
func answersSchema() map[string]interface{} {
	number := map[string]interface{}{"type": "number"}
	boolean := map[string]interface{}{"type": "boolean"}

	properties := map[string]interface{}{
		"schemaVersion": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
			"maximum": constants.SchemaVersion,
		},
		answers.FieldRegion: map[string]interface{}{
			"type": "string",
			"enum": []interface{}{string(domain.RegionUS), string(domain.RegionCA)},
		},
		answers.FieldStoreType: map[string]interface{}{
			"type": "string",
			"enum": []interface{}{string(domain.StoreNew), string(domain.StoreExisting)},
		},
		answers.FieldHandlesTaxRush: boolean,
		answers.FieldHasOtherIncome: boolean,
		answers.FieldIsExampleData:  boolean,
		"expensesSeeded":            boolean,
		"expenseBaselines": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": number,
		},
		answers.FieldExpenseNotes: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
	}

	for _, field := range answers.DataFields() {
		if strings.HasSuffix(field, "Manual") {
			properties[field] = boolean
			continue
		}
		properties[field] = number
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
}

// ValidateDocument checks a persisted document against the answers schema.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(answersSchema())
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("answers validation failed: %v", errs)
	}
	return nil
}
