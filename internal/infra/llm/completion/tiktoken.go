package completion

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

const defaultEncoding = "cl100k_base"

// TiktokenEstimator counts real BPE tokens. Models tiktoken does not know use cl100k_base;
// if no encoding can be loaded at all it degrades to the word-rate estimate.
type TiktokenEstimator struct {
	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
	fallback WordRateEstimator
}

// NewTiktokenEstimator constructs an estimator with an empty encoder cache.
func NewTiktokenEstimator() *TiktokenEstimator {
	return &TiktokenEstimator{encoders: make(map[string]*tiktoken.Tiktoken)}
}

// EstimateTokens implements TokenEstimator.
func (e *TiktokenEstimator) EstimateTokens(prompt string, profile summarizer.ModelProfile) float64 {
	enc := e.encoder(profile.Name)
	if enc == nil {
		return e.fallback.EstimateTokens(prompt, profile)
	}
	return float64(len(enc.Encode(prompt, nil, nil)))
}

func (e *TiktokenEstimator) encoder(model string) *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enc, ok := e.encoders[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(defaultEncoding)
	}
	if err != nil {
		enc = nil
	}
	e.encoders[model] = enc
	return enc
}
