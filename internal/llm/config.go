package llm

// ModelTier selects the capability level for a call.
type ModelTier string

const (
	// TierLite is for cheap extraction from a single page fragment.
	TierLite ModelTier = "lite"
	// TierStandard is for the pulse selection call, which reasons over
	// many articles at once.
	TierStandard ModelTier = "standard"
)

// Config holds the model configuration for the crawler.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the Gemini models the jobs run with.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model name for a tier, falling back to standard.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	return ""
}
