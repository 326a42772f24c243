package llm

const (
	// Suggestion count constraints
	minScaleSuggestions = 1
	maxScaleSuggestions = 5
)

// ScaleSuggestionSchemaName names the JSON schema sent with scale requests
const ScaleSuggestionSchemaName = "scale_suggestions"

// GetScaleSuggestionSchema returns the JSON schema for ranked scale suggestions.
// OpenAI strict mode requires every property to be listed in required.
func GetScaleSuggestionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scales": map[string]any{
				"type":     "array",
				"minItems": minScaleSuggestions,
				"maxItems": maxScaleSuggestions,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Scale name with its root, e.g. 'G mixolydian'",
						},
						"reason": map[string]any{
							"type":        "string",
							"description": "One sentence on why the scale fits the chord",
						},
					},
					"required":             []string{"name", "reason"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"scales"},
		"additionalProperties": false,
	}
}

// ScaleSuggestionOutputSchema wraps the schema for a GenerationRequest
func ScaleSuggestionOutputSchema() *OutputSchema {
	return &OutputSchema{
		Name:        ScaleSuggestionSchemaName,
		Description: "Scales to improvise over a chord, best first",
		Schema:      GetScaleSuggestionSchema(),
	}
}
