package service

import (
	"github.com/shopspring/decimal"

	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
)

// EstimateCost converts provider-reported token counts into an estimated
// USD cost using the configured per-1M-token prices.
func EstimateCost(promptTokens, completionTokens int) decimal.Decimal {
	promptCost := decimal.NewFromFloat(float64(promptTokens) * config.PromptPricePerM / 1_000_000)
	completionCost := decimal.NewFromFloat(float64(completionTokens) * config.CompletionPricePerM / 1_000_000)
	return promptCost.Add(completionCost)
}
