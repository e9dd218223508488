// Package tokens converts text to token counts and token counts to money.
package tokens

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// Message is one chat message for counting purposes.
type Message struct {
	Role    string
	Content string
}

// Accountant counts tokens for a configured model and estimates cost from a
// pricing table. Counting is exact when the model's encoder loads and falls
// back to a characters/4 approximation otherwise.
type Accountant struct {
	encoder *tiktoken.Tiktoken

	// Per-provider structural overheads. Approximations for OpenAI's chat
	// format; close enough for warning thresholds, not billing.
	MessageOverhead      int
	ConversationOverhead int

	pricing *PricingTable
}

// NewAccountant builds an Accountant for model. A nil pricing table uses the
// built-in defaults.
func NewAccountant(model string, pricing *PricingTable) *Accountant {
	if pricing == nil {
		pricing = DefaultPricingTable()
	}

	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Newer models are not in tiktoken's registry; cl100k_base covers them.
		encoder, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("tokenizer unavailable, token counting will use approximation", "model", model, "error", err)
			encoder = nil
		}
	}

	return &Accountant{
		encoder:              encoder,
		MessageOverhead:      4,
		ConversationOverhead: 2,
		pricing:              pricing,
	}
}

// CountTokens returns the token count of text, never negative.
func (a *Accountant) CountTokens(text string) int {
	if a.encoder == nil {
		// Rough estimation: 1 token ~ 4 characters
		return len(text) / 4
	}
	return len(a.encoder.Encode(text, nil, nil))
}

// CountMessagesTokens sums per-message counts plus the structural overheads.
func (a *Accountant) CountMessagesTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += a.CountTokens(m.Content)
		total += a.MessageOverhead
	}
	total += a.ConversationOverhead
	return total
}

// EstimateCost returns the estimated USD cost for the given token usage.
func (a *Accountant) EstimateCost(model string, inputTokens, outputTokens int) float64 {
	return a.pricing.Cost(model, inputTokens, outputTokens)
}
