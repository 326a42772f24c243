package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name         string
	generateFunc func(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, request)
	}
	return &GenerationResponse{}, nil
}

func TestProviderInterface(t *testing.T) {
	var p Provider = &MockProvider{name: "mock"}
	assert.Equal(t, "mock", p.Name())
}

func TestMockProviderGenerate(t *testing.T) {
	callCount := 0
	mock := &MockProvider{
		name: "test",
		generateFunc: func(_ context.Context, request *GenerationRequest) (*GenerationResponse, error) {
			callCount++
			require.Equal(t, "test-model", request.Model)
			return &GenerationResponse{RawOutput: `{"scales":[]}`}, nil
		},
	}

	resp, err := mock.Generate(context.Background(), &GenerationRequest{Model: "test-model"})
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, `{"scales":[]}`, resp.RawOutput)
}

func TestUsageMap(t *testing.T) {
	u := Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	m := u.Map()
	assert.Equal(t, int64(10), m["input_tokens"])
	assert.Equal(t, int64(15), m["total_tokens"])
}

func TestProviderFactory(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		openaiKey    string
		model        string
		providerName string
		wantName     string
		wantErr      bool
	}{
		{name: "explicit openai", openaiKey: "k", providerName: "openai", wantName: "openai"},
		{name: "explicit openai without key", providerName: "OpenAI", wantErr: true},
		{name: "gpt model", openaiKey: "k", model: "gpt-5-mini", wantName: "openai"},
		{name: "unknown model defaults to openai", openaiKey: "k", model: "mystery", wantName: "openai"},
		{name: "gemini without key", model: "gemini-2.5-flash", wantErr: true},
		{name: "unknown provider", openaiKey: "k", providerName: "anthropic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewProviderFactory(tt.openaiKey, "")
			p, err := f.GetProvider(ctx, tt.model, tt.providerName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestSongDSLCFG(t *testing.T) {
	cfg := SongDSLCFG()
	assert.Equal(t, SongDSLToolName, cfg.ToolName)
	assert.Equal(t, "lark", cfg.Syntax)
	assert.Contains(t, cfg.Grammar, "song_call")
}
