// internal/common/validation/schema.go

// Package validation checks incoming appraisal requests against a JSON schema
// before they reach the engine, so shape errors surface as one structured 400
// instead of a cascade of stage failures.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"appraisal-engine/internal/common/errors"
)

const appraisalRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["listing"],
	"properties": {
		"listing": {
			"type": "object",
			"properties": {
				"price": {"type": "number", "exclusiveMinimum": 0},
				"address": {"type": "string"},
				"beds": {"type": "number", "minimum": 0},
				"baths": {"type": "number", "minimum": 0},
				"sqft": {"type": "number", "exclusiveMinimum": 0},
				"lotSize": {"type": "number", "minimum": 0},
				"yearBuilt": {"type": "integer", "minimum": 1800, "maximum": 2100},
				"propertyType": {"type": "string"},
				"zoningCode": {"type": "string"},
				"numUnits": {"type": "integer", "minimum": 1},
				"source": {"type": "string"},
				"sourceUrl": {"type": "string"}
			}
		},
		"income": {
			"type": "object",
			"properties": {
				"marketRent": {"type": "number", "exclusiveMinimum": 0},
				"vacancyRate": {"type": "number", "minimum": 0, "maximum": 1},
				"expenseRatio": {"type": "number", "minimum": 0, "maximum": 1},
				"itemizedExpenses": {"type": "number", "minimum": 0},
				"reserveRate": {"type": "number", "minimum": 0, "maximum": 1},
				"stabilizedRent": {"type": "number", "exclusiveMinimum": 0},
				"stabilizedVacancy": {"type": "number", "minimum": 0, "maximum": 1},
				"includePropertyTax": {"type": "boolean"},
				"customTaxRate": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
			}
		},
		"capRate": {
			"type": "object",
			"properties": {
				"propertyType": {"type": "string"},
				"submarketClass": {"type": "string"},
				"riskScore": {"type": "number", "minimum": 0, "maximum": 100},
				"rentControlled": {"type": "boolean"}
			}
		},
		"salesComps": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["price", "sqft"],
				"properties": {
					"price": {"type": "number", "exclusiveMinimum": 0},
					"sqft": {"type": "number", "exclusiveMinimum": 0},
					"distanceMiles": {"type": "number", "minimum": 0},
					"adjustment": {"type": "number"}
				}
			}
		},
		"rentComps": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["monthlyRent"],
				"properties": {
					"monthlyRent": {"type": "number", "exclusiveMinimum": 0},
					"beds": {"type": "number", "minimum": 0},
					"sqft": {"type": "number", "exclusiveMinimum": 0}
				}
			}
		},
		"financing": {
			"type": "object",
			"properties": {
				"interestRate": {"type": "number", "minimum": 0, "maximum": 1},
				"amortMonths": {"type": "integer", "exclusiveMinimum": 0},
				"minDscr": {"type": "number", "exclusiveMinimum": 0},
				"maxLtv": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
				"closingCostPct": {"type": "number", "minimum": 0, "maximum": 1}
			}
		},
		"enrichment": {
			"type": "object",
			"properties": {
				"jurisdiction": {"type": "string"},
				"submarketClass": {"type": "string"},
				"floodHighRisk": {"type": "boolean"},
				"fireHazardZone": {"type": "boolean"},
				"faultZone": {"type": "boolean"},
				"hudFmrRent": {"type": "number", "exclusiveMinimum": 0},
				"downsidePct": {"type": "number", "minimum": 0, "maximum": 1}
			}
		},
		"valueAdd": {
			"type": "object",
			"properties": {
				"rehabBudget": {"type": "number", "minimum": 0},
				"stabilizedRent": {"type": "number", "exclusiveMinimum": 0},
				"exitCapRate": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
			}
		}
	}
}`

// RequestValidator holds the compiled appraisal request schema.
type RequestValidator struct {
	schema *gojsonschema.Schema
}

func NewRequestValidator() (*RequestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(appraisalRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}
	return &RequestValidator{schema: schema}, nil
}

// Validate checks a raw request body against the schema. Validation failures
// come back as a single StandardError listing every violation.
func (v *RequestValidator) Validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.NewRequestValidationFailedError(fmt.Sprintf("request is not valid JSON: %v", err))
	}

	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return errors.NewRequestValidationFailedError(strings.Join(details, "; "))
	}
	return nil
}
