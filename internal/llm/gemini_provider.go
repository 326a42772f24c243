package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements non-streaming generation using Gemini's API.
// Gemini has no CFG tools, so a grammar is passed as instructions instead.
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 GEMINI ADVISOR REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: geminiInstructions(request)}},
		},
	}

	if request.OutputSchema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = convertSchemaToGemini(request.OutputSchema.Schema)
	}

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, request.Model, buildGeminiContents(request.InputArray), config)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	response, err := processGeminiResponse(result)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	response.Model = request.Model
	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI ADVISOR REQUEST COMPLETED in %v (tokens: %d)", time.Since(startTime), response.Usage.TotalTokens)
	return response, nil
}

func geminiInstructions(request *GenerationRequest) string {
	if request.CFGGrammar == nil {
		return request.SystemPrompt
	}
	return request.SystemPrompt +
		"\n\nRespond with DSL code only, no prose and no code fences. The code must match this Lark grammar:\n" +
		request.CFGGrammar.Grammar
}

// buildGeminiContents converts our input array to Gemini Content format
func buildGeminiContents(inputArray []map[string]any) []*genai.Content {
	var contents []*genai.Content

	for _, item := range inputArray {
		_, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		// Gemini only knows "user" and "model"; developer messages go as user
		contents = append(contents, &genai.Content{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: content}},
		})
	}

	return contents
}

// convertSchemaToGemini maps a JSON schema object onto genai.Schema
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	switch t, _ := schema["type"].(string); t {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if enum, ok := schema["enum"].([]string); ok {
		out.Enum = enum
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propSchema, ok := prop.(map[string]any); ok {
				out.Properties[name] = convertSchemaToGemini(propSchema)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaToGemini(items)
	}

	return out
}

// processGeminiResponse converts Gemini response to our GenerationResponse
func processGeminiResponse(result *genai.GenerateContentResponse) (*GenerationResponse, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	textOutput := cleanTextOutput(text.String())
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))
	if textOutput == "" {
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	response := &GenerationResponse{RawOutput: textOutput}
	if result.UsageMetadata != nil {
		response.Usage = Usage{
			InputTokens:     int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens:    int64(result.UsageMetadata.CandidatesTokenCount),
			ReasoningTokens: int64(result.UsageMetadata.ThoughtsTokenCount),
			TotalTokens:     int64(result.UsageMetadata.TotalTokenCount),
		}
	}
	return response, nil
}
