package observability

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// GPT-5 pricing
	gpt5InputPrice  = 0.00125
	gpt5OutputPrice = 0.01

	// GPT-5-mini pricing
	gpt5MiniInputPrice  = 0.00025
	gpt5MiniOutputPrice = 0.002

	// GPT-4o-mini pricing
	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006

	// Gemini 2.5 Flash pricing
	geminiFlashInputPrice  = 0.0003
	geminiFlashOutputPrice = 0.0025

	defaultPricingModel = "gpt-5-mini"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for the advisor models
var PricingTable = map[string]ModelPricing{
	"gpt-5": {
		InputPricePer1K:  gpt5InputPrice,
		OutputPricePer1K: gpt5OutputPrice,
	},
	"gpt-5-mini": {
		InputPricePer1K:  gpt5MiniInputPrice,
		OutputPricePer1K: gpt5MiniOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
	"gemini-2.5-flash": {
		InputPricePer1K:  geminiFlashInputPrice,
		OutputPricePer1K: geminiFlashOutputPrice,
	},
}

// CalculateCost calculates the cost in USD of a generation.
// Reasoning tokens are billed as output and are already counted in OutputTokens.
func CalculateCost(modelName string, usage llm.Usage) float64 {
	pricing, exists := PricingTable[strings.ToLower(modelName)]
	if !exists {
		pricing = PricingTable[defaultPricingModel]
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
