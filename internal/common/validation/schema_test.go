package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	"type":     "object",
	"required": []string{"companyId", "ratings"},
	"properties": map[string]interface{}{
		"companyId": map[string]interface{}{"type": "string", "minLength": 1},
		"ratings": map[string]interface{}{
			"type":     "object",
			"required": []string{"dataMaturity"},
			"properties": map[string]interface{}{
				"dataMaturity": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 5},
			},
		},
	},
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		document  map[string]interface{}
		wantValid bool
		wantField string
	}{
		{
			name:      "valid",
			document:  map[string]interface{}{"companyId": "c1", "ratings": map[string]interface{}{"dataMaturity": 3}},
			wantValid: true,
		},
		{
			name:      "missing root field",
			document:  map[string]interface{}{"ratings": map[string]interface{}{"dataMaturity": 3}},
			wantField: "companyId",
		},
		{
			name:      "missing nested field",
			document:  map[string]interface{}{"companyId": "c1", "ratings": map[string]interface{}{}},
			wantField: "ratings.dataMaturity",
		},
		{
			name:      "out of range",
			document:  map[string]interface{}{"companyId": "c1", "ratings": map[string]interface{}{"dataMaturity": 9}},
			wantField: "ratings.dataMaturity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(tt.document, testSchema)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.True(t, result.HasErrors(tt.wantField), "errors: %v", result.GetErrorMessages())
			}
		})
	}
}

func TestValidationResult_GetErrorsForField(t *testing.T) {
	vr := &ValidationResult{Errors: []ValidationError{
		{Field: "ratings.dataMaturity", Message: "too big"},
		{Field: "companyId", Message: "missing"},
	}}

	assert.Len(t, vr.GetErrorsForField("ratings"), 1)
	assert.Equal(t, []string{"ratings.dataMaturity: too big", "companyId: missing"}, vr.GetErrorMessages())
}
