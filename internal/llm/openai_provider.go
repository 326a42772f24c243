package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/grammar-school-go/gs"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	// Role constants
	userRole       = "user"
	developerRole  = "developer"
	maxOutputTrunc = 200

	// Reasoning effort levels
	reasoningNone    = "none"
	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"

	// Provider name
	providerNameOpenAI = "openai"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	customToolCallType   = "custom_tool_call"
)

// Only the GPT-5 family accepts a reasoning parameter
var modelsWithReasoning = map[string]bool{
	"gpt-5":        true,
	"gpt-5-mini":   true,
	"gpt-5-nano":   true,
	"gpt-5.1":      true,
	"gpt-5.1-mini": true,
	"gpt-5.2":      true,
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client     *openai.Client
	apiKey     string // for raw HTTP requests carrying CFG tools
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return newOpenAIProvider(apiKey, defaultOpenAIBaseURL)
}

func newOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL))
	return &OpenAIProvider{
		client:     &client,
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate runs a non-streaming request. CFG requests go through a raw HTTP
// call because the SDK has no custom tool type.
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI ADVISOR REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)
	transaction.SetTag("cfg", fmt.Sprintf("%t", request.CFGGrammar != nil))

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	var (
		resp *GenerationResponse
		err  error
	)
	if request.CFGGrammar != nil {
		resp, err = p.executeRawCFGRequest(ctx, params, request.CFGGrammar)
	} else {
		var sdkResp *responses.Response
		sdkResp, err = p.client.Responses.New(ctx, params)
		if err == nil {
			resp, err = p.processResponse(sdkResp)
		}
	}
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	resp.Model = request.Model
	transaction.SetTag("success", "true")
	log.Printf("✅ OPENAI ADVISOR REQUEST COMPLETED in %v (tokens: %d)", time.Since(startTime), resp.Usage.TotalTokens)
	return resp, nil
}

// buildRequestParams converts GenerationRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{}

	for _, item := range request.InputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		roleEnum := responses.EasyInputMessageRoleUser
		if role == developerRole {
			roleEnum = responses.EasyInputMessageRoleDeveloper
		}

		inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(content, roleEnum))
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions:      openai.String(request.SystemPrompt),
		ParallelToolCalls: openai.Bool(request.CFGGrammar == nil),
	}

	if modelsWithReasoning[request.Model] {
		params.Reasoning = shared.ReasoningParam{Effort: reasoningEffort(request.ReasoningMode)}
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
		log.Printf("📋 JSON SCHEMA CONFIGURED: %s", request.OutputSchema.Name)
	}

	return params
}

func reasoningEffort(mode string) shared.ReasoningEffort {
	switch mode {
	case reasoningMinimal, reasoningLow:
		return responses.ReasoningEffortLow
	case reasoningMedium:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	default:
		return shared.ReasoningEffort(reasoningNone)
	}
}

// executeRawCFGRequest sends the request with the grammar attached as a custom tool
func (p *OpenAIProvider) executeRawCFGRequest(
	ctx context.Context,
	params responses.ResponseNewParams,
	cfg *CFGConfig,
) (*GenerationResponse, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	var paramsMap map[string]any
	if err := json.Unmarshal(paramsJSON, &paramsMap); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	p.addCFGToolToParams(paramsMap, cfg)

	body, err := p.makeRawHTTPRequest(ctx, paramsMap)
	if err != nil {
		return nil, err
	}

	var rawResponse map[string]any
	if err := json.Unmarshal(body, &rawResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	dsl := extractDSLFromOutput(rawResponse)
	if dsl == "" {
		return nil, fmt.Errorf("CFG grammar was configured but the model did not call the %s tool", cfg.ToolName)
	}

	return &GenerationResponse{
		RawOutput: dsl,
		Usage:     usageFromRawResponse(rawResponse),
	}, nil
}

// addCFGToolToParams adds the grammar-school CFG tool to request params
func (p *OpenAIProvider) addCFGToolToParams(paramsMap map[string]any, cfg *CFGConfig) {
	syntax := cfg.Syntax
	if syntax == "" {
		syntax = "lark"
	}
	cfgTool := gs.BuildOpenAICFGTool(gs.CFGConfig{
		ToolName:    cfg.ToolName,
		Description: cfg.Description,
		Grammar:     gs.CleanGrammarForCFG(cfg.Grammar),
		Syntax:      syntax,
	})
	log.Printf("🔧 CFG GRAMMAR CONFIGURED: %s (syntax: %s)", cfg.ToolName, syntax)

	paramsMap["text"] = gs.GetOpenAITextFormatForCFG()
	paramsMap["tools"] = []any{cfgTool}
	paramsMap["parallel_tool_calls"] = false
}

// makeRawHTTPRequest sends raw HTTP request to OpenAI
func (p *OpenAIProvider) makeRawHTTPRequest(ctx context.Context, paramsMap map[string]any) ([]byte, error) {
	payload, err := json.Marshal(paramsMap)
	if err != nil {
		return nil, err
	}

	log.Printf("📤 Making raw HTTP request (JSON size: %d bytes)", len(payload))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			log.Printf("⚠️  Failed to close response body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", httpResp.StatusCode, truncate(string(body), maxOutputTrunc))
	}
	return body, nil
}

// extractDSLFromOutput finds the input of the first custom tool call
func extractDSLFromOutput(rawResponse map[string]any) string {
	output, ok := rawResponse["output"].([]any)
	if !ok {
		log.Printf("⚠️  No output array found in raw response")
		return ""
	}

	for _, item := range output {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if itemType, _ := itemMap["type"].(string); itemType != customToolCallType {
			continue
		}
		if input, ok := itemMap["input"].(string); ok && strings.TrimSpace(input) != "" {
			log.Printf("✅ Found DSL code: %s", truncate(input, maxOutputTrunc))
			return strings.TrimSpace(input)
		}
	}
	return ""
}

func usageFromRawResponse(rawResponse map[string]any) Usage {
	usageMap, ok := rawResponse["usage"].(map[string]any)
	if !ok {
		return Usage{}
	}
	number := func(m map[string]any, key string) int64 {
		if f, ok := m[key].(float64); ok {
			return int64(f)
		}
		return 0
	}
	u := Usage{
		InputTokens:  number(usageMap, "input_tokens"),
		OutputTokens: number(usageMap, "output_tokens"),
		TotalTokens:  number(usageMap, "total_tokens"),
	}
	if details, ok := usageMap["output_tokens_details"].(map[string]any); ok {
		u.ReasoningTokens = number(details, "reasoning_tokens")
	}
	return u
}

// processResponse extracts text output from an SDK response
func (p *OpenAIProvider) processResponse(resp *responses.Response) (*GenerationResponse, error) {
	textOutput := cleanTextOutput(resp.OutputText())
	log.Printf("📥 OPENAI RESPONSE: output_length=%d, output_items=%d, tokens=%d",
		len(textOutput), len(resp.Output), resp.Usage.TotalTokens)

	if textOutput == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	return &GenerationResponse{
		RawOutput: textOutput,
		Usage: Usage{
			InputTokens:     resp.Usage.InputTokens,
			OutputTokens:    resp.Usage.OutputTokens,
			ReasoningTokens: resp.Usage.OutputTokensDetails.ReasoningTokens,
			TotalTokens:     resp.Usage.TotalTokens,
		},
	}, nil
}

// cleanTextOutput strips markdown code fences around JSON output
func cleanTextOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
