package metrics

// RunUsage captures how much of the completion service one summarization run consumed.
type RunUsage struct {
	CompletionCalls       int `json:"completionCalls"`
	EstimatedPromptTokens int `json:"estimatedPromptTokens"`
}

// Add records one completion call.
func (u *RunUsage) Add(promptTokens int) {
	u.CompletionCalls++
	u.EstimatedPromptTokens += promptTokens
}

// IsZero reports whether usage data is absent.
func (u RunUsage) IsZero() bool {
	return u.CompletionCalls == 0 && u.EstimatedPromptTokens == 0
}
