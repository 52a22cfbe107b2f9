package ai

import "chronle/ports"

// ModelPrice is the USD price per million tokens for one model.
type ModelPrice struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// cachedInputDiscount: a provider-side prompt-cache hit bills input tokens
// at 10% of the uncached price.
const cachedInputDiscount = 0.10

// defaultPrices covers the models the pipeline is configured to use.
// Unknown models fall back to the most expensive known rate so a pricing
// gap shows up as an overestimate on the dashboard, never an underestimate.
var defaultPrices = map[string]ModelPrice{
	"gpt-5.2":      {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"gpt-5.2-mini": {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4.1":      {InputPerMTok: 2.00, OutputPerMTok: 8.00},
	"gpt-4.1-mini": {InputPerMTok: 0.40, OutputPerMTok: 1.60},
}

// fallbackPrice is used for models missing from the table.
var fallbackPrice = ModelPrice{InputPerMTok: 2.50, OutputPerMTok: 10.00}

// Cost is the USD accounting for one generation call.
type Cost struct {
	InputUSD        float64 `json:"input_usd"`
	OutputUSD       float64 `json:"output_usd"`
	CacheSavingsUSD float64 `json:"cache_savings_usd"`
	TotalUSD        float64 `json:"total_usd"`
}

// PriceFor returns the configured price for a model.
func PriceFor(model string) ModelPrice {
	if p, ok := defaultPrices[model]; ok {
		return p
	}
	return fallbackPrice
}

// ComputeCost prices a call from its token usage. On a cache hit the input
// side is billed at the discounted rate and the difference is surfaced as
// CacheSavingsUSD. Reasoning tokens are billed as output tokens, which is
// how providers report them inside the completion count.
func ComputeCost(usage ports.TokenUsage, model string, cacheHit bool) Cost {
	price := PriceFor(model)

	uncachedInput := float64(usage.InputTokens) / 1e6 * price.InputPerMTok
	input := uncachedInput
	savings := 0.0
	if cacheHit {
		input = uncachedInput * cachedInputDiscount
		savings = uncachedInput - input
	}
	output := float64(usage.OutputTokens) / 1e6 * price.OutputPerMTok

	return Cost{
		InputUSD:        input,
		OutputUSD:       output,
		CacheSavingsUSD: savings,
		TotalUSD:        input + output,
	}
}
