package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name  string
		model string
		usage llm.Usage
		want  float64
	}{
		{
			name:  "gpt-5-mini",
			model: "gpt-5-mini",
			usage: llm.Usage{InputTokens: 1000, OutputTokens: 1000},
			want:  gpt5MiniInputPrice + gpt5MiniOutputPrice,
		},
		{
			name:  "unknown model uses default pricing",
			model: "mystery-model",
			usage: llm.Usage{InputTokens: 2000},
			want:  2 * gpt5MiniInputPrice,
		},
		{
			name:  "no tokens",
			model: "gpt-5",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.model, tt.usage), 1e-12)
		})
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.002250", FormatCost(0.00225))
}

func TestDisabledLangfuseIsNoop(t *testing.T) {
	c := GetClient()
	assert.False(t, c.IsEnabled())

	trace := c.StartTrace(t.Context(), "advisor.suggest_scales", nil)
	gen := trace.Generation("scales", nil)
	gen.LogAdvisorResponse(llm.UserMessage("G7"), &llm.GenerationResponse{RawOutput: "{}"}, nil)
	gen.Finish()
	trace.Finish()
}
