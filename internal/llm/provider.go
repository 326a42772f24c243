package llm

import (
	"context"
)

// Provider defines the interface for LLM providers used by the advisor.
// Providers support either structured JSON output or CFG-constrained DSL output.
type Provider interface {
	// Generate sends the request and returns the raw text output
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	// Structured output schema for JSON responses
	OutputSchema *OutputSchema
	// CFG Grammar for DSL output (alternative to JSON Schema)
	CFGGrammar *CFGConfig
}

// CFGConfig contains context-free grammar configuration
type CFGConfig struct {
	ToolName    string // Name of the tool that will receive the DSL output
	Description string // Description of what the tool does
	Grammar     string // Lark grammar definition
	Syntax      string // "lark" or "regex" (default: "lark")
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string `json:"-"` // JSON text or DSL code, depending on the request
	Model     string `json:"model"`
	Usage     Usage  `json:"usage"`
}

// Usage is the token accounting of a single generation
type Usage struct {
	InputTokens     int64 `json:"input_tokens"`
	OutputTokens    int64 `json:"output_tokens"`
	ReasoningTokens int64 `json:"reasoning_tokens,omitempty"`
	TotalTokens     int64 `json:"total_tokens"`
}

// Map returns the usage in the shape the logger and Langfuse expect
func (u Usage) Map() map[string]interface{} {
	return map[string]interface{}{
		"input_tokens":     u.InputTokens,
		"output_tokens":    u.OutputTokens,
		"reasoning_tokens": u.ReasoningTokens,
		"total_tokens":     u.TotalTokens,
	}
}

// UserMessage builds a single-entry input array
func UserMessage(content string) []map[string]any {
	return []map[string]any{{"role": userRole, "content": content}}
}
