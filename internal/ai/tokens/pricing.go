package tokens

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelPrice holds per-token prices in USD.
type ModelPrice struct {
	InputPerToken  float64
	OutputPerToken float64
}

// PricingTable maps model identifiers to prices. Unknown models fall back
// to the designated default entry.
type PricingTable struct {
	prices       map[string]ModelPrice
	defaultModel string
}

// DefaultPricingTable returns the built-in price table.
func DefaultPricingTable() *PricingTable {
	return &PricingTable{
		defaultModel: "gpt-3.5-turbo",
		prices: map[string]ModelPrice{
			"gpt-3.5-turbo": {
				InputPerToken:  0.0015 / 1000,
				OutputPerToken: 0.002 / 1000,
			},
			"gpt-4": {
				InputPerToken:  0.03 / 1000,
				OutputPerToken: 0.06 / 1000,
			},
			"gpt-4-turbo-preview": {
				InputPerToken:  0.01 / 1000,
				OutputPerToken: 0.03 / 1000,
			},
			"gpt-4o": {
				InputPerToken:  0.0025 / 1000,
				OutputPerToken: 0.01 / 1000,
			},
			"gpt-4o-mini": {
				InputPerToken:  0.00015 / 1000,
				OutputPerToken: 0.0006 / 1000,
			},
		},
	}
}

type pricingFile struct {
	Default string `yaml:"default"`
	Models  map[string]struct {
		InputPer1kTokens  float64 `yaml:"input_per_1k_tokens"`
		OutputPer1kTokens float64 `yaml:"output_per_1k_tokens"`
	} `yaml:"models"`
}

// LoadPricingTable reads a YAML price file. Entries override the built-in
// table; models absent from the file keep their built-in prices.
func LoadPricingTable(path string) (*PricingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing file: %w", err)
	}

	var pf pricingFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse pricing file: %w", err)
	}

	table := DefaultPricingTable()
	for model, p := range pf.Models {
		table.prices[model] = ModelPrice{
			InputPerToken:  p.InputPer1kTokens / 1000,
			OutputPerToken: p.OutputPer1kTokens / 1000,
		}
	}
	if pf.Default != "" {
		if _, ok := table.prices[pf.Default]; !ok {
			return nil, fmt.Errorf("default model %q has no pricing entry", pf.Default)
		}
		table.defaultModel = pf.Default
	}
	return table, nil
}

// Price returns the entry for model, or the default entry on a miss.
func (t *PricingTable) Price(model string) ModelPrice {
	if p, ok := t.prices[model]; ok {
		return p
	}
	return t.prices[t.defaultModel]
}

// Cost estimates the USD cost of an operation.
func (t *PricingTable) Cost(model string, inputTokens, outputTokens int) float64 {
	p := t.Price(model)
	return float64(inputTokens)*p.InputPerToken + float64(outputTokens)*p.OutputPerToken
}
