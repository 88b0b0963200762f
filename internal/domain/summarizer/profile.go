package summarizer

import "strings"

const (
	// DefaultModel is used when neither config nor request names a model.
	DefaultModel = "text-davinci-003"

	defaultTokensPerWord  = 4.0 / 3.0
	fallbackMaxTokenCount = 2048
)

// ModelProfile carries the length constants of one completion model.
// TokensPerWord is an empirical approximation, so every budget derived from it is too.
type ModelProfile struct {
	Name          string  `yaml:"name" json:"name"`
	MaxTokens     int     `yaml:"maxTokens" json:"maxTokens"`
	TokensPerWord float64 `yaml:"tokensPerWord" json:"tokensPerWord"`
}

// EstimateTokens converts a word count to a token count, truncating like the budget math does.
func (p ModelProfile) EstimateTokens(words int) int {
	return int(float64(words) * p.rate())
}

func (p ModelProfile) rate() float64 {
	if p.TokensPerWord <= 0 {
		return defaultTokensPerWord
	}
	return p.TokensPerWord
}

// ProfileRegistry maps model identifiers to profiles.
type ProfileRegistry map[string]ModelProfile

// DefaultProfiles returns the built-in model table.
func DefaultProfiles() ProfileRegistry {
	return ProfileRegistry{
		"text-davinci-003":        {Name: "text-davinci-003", MaxTokens: 4000, TokensPerWord: defaultTokensPerWord},
		"gpt-3.5-turbo-instruct":  {Name: "gpt-3.5-turbo-instruct", MaxTokens: 4096, TokensPerWord: defaultTokensPerWord},
		"gpt-4o-mini":             {Name: "gpt-4o-mini", MaxTokens: 16000, TokensPerWord: defaultTokensPerWord},
		"claude-3-5-haiku-latest": {Name: "claude-3-5-haiku-latest", MaxTokens: 8000, TokensPerWord: defaultTokensPerWord},
	}
}

// Merge returns a registry with extra entries layered over r.
func (r ProfileRegistry) Merge(extra ProfileRegistry) ProfileRegistry {
	out := make(ProfileRegistry, len(r)+len(extra))
	for name, p := range r {
		out[name] = p
	}
	for name, p := range extra {
		if p.Name == "" {
			p.Name = name
		}
		out[name] = p
	}
	return out
}

// Resolve looks up a profile. Unknown models fall back to a conservative 2048-token budget.
func (r ProfileRegistry) Resolve(model string) ModelProfile {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if p, ok := r[model]; ok {
		if p.Name == "" {
			p.Name = model
		}
		if p.TokensPerWord <= 0 {
			p.TokensPerWord = defaultTokensPerWord
		}
		return p
	}
	return ModelProfile{Name: model, MaxTokens: fallbackMaxTokenCount, TokensPerWord: defaultTokensPerWord}
}
