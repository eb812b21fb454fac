// Package llm wraps the text generation provider used for writing assistance.
package llm

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for short rewrites of a single section
	TierLite ModelTier = "lite"
	// TierStandard is for full cover letter bodies
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultInstruction frames every request as plain résumé copy
const DefaultInstruction = "You write concise, professional résumé and cover letter text. " +
	"Reply with the finished text only: no headings, no markdown, no commentary."

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// MaxTokens caps the reply length per tier; zero leaves the model default
	MaxTokens   map[ModelTier]int32
	Temperature float32
	// Instruction is sent as the system instruction with every request
	Instruction string
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		MaxTokens: map[ModelTier]int32{
			TierLite:     512,
			TierStandard: 2048,
		},
		Temperature: 0.7,
		Instruction: DefaultInstruction,
	}
}

// GetModel returns the model name for a given tier, falling back to the
// standard tier and then the lite tier
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return &out
}
