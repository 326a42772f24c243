package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiProvider_Name(t *testing.T) {
	provider := &GeminiProvider{client: nil}
	assert.Equal(t, "gemini", provider.Name())
}

func TestGeminiProvider_BuildContents(t *testing.T) {
	tests := []struct {
		name       string
		inputArray []map[string]any
		wantLen    int
	}{
		{
			name:       "single user message",
			inputArray: UserMessage("test content"),
			wantLen:    1,
		},
		{
			name: "developer role converted to user",
			inputArray: []map[string]any{
				{"role": "developer", "content": "system message"},
			},
			wantLen: 1,
		},
		{
			name: "invalid message skipped",
			inputArray: []map[string]any{
				{"role": "user", "content": "valid"},
				{"role": "user"},
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := buildGeminiContents(tt.inputArray)
			assert.Len(t, contents, tt.wantLen)
			for _, content := range contents {
				assert.Equal(t, "user", content.Role)
				assert.NotEmpty(t, content.Parts)
			}
		})
	}
}

func TestConvertSchemaToGemini(t *testing.T) {
	schema := convertSchemaToGemini(GetScaleSuggestionSchema())
	require.NotNil(t, schema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"scales"}, schema.Required)

	scales := schema.Properties["scales"]
	require.NotNil(t, scales)
	assert.Equal(t, genai.TypeArray, scales.Type)
	require.NotNil(t, scales.Items)
	assert.Equal(t, genai.TypeString, scales.Items.Properties["name"].Type)
	assert.ElementsMatch(t, []string{"name", "reason"}, scales.Items.Required)
}

func TestGeminiInstructionsEmbedGrammar(t *testing.T) {
	plain := geminiInstructions(&GenerationRequest{SystemPrompt: "base"})
	assert.Equal(t, "base", plain)

	withGrammar := geminiInstructions(&GenerationRequest{SystemPrompt: "base", CFGGrammar: SongDSLCFG()})
	assert.Contains(t, withGrammar, "chord_call")
}

func TestProcessGeminiResponse(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "```json\n{\"scales\":"}, {Text: "[]}\n```"}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     40,
			CandidatesTokenCount: 8,
			TotalTokenCount:      48,
		},
	}

	resp, err := processGeminiResponse(result)
	require.NoError(t, err)
	assert.Equal(t, `{"scales":[]}`, resp.RawOutput)
	assert.Equal(t, int64(48), resp.Usage.TotalTokens)

	_, err = processGeminiResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}
