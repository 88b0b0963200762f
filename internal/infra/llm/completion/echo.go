package completion

import (
	"context"
	"fmt"
	"strings"
)

// EchoBackend answers without any network call. Local development only.
type EchoBackend struct{}

// Complete returns a single bullet describing the prompt it received.
func (EchoBackend) Complete(_ context.Context, req Request) (string, error) {
	lines := strings.Split(strings.TrimSpace(req.Prompt), "\n")
	return fmt.Sprintf("* %s (%d prompt words, max_tokens=%d)", strings.TrimSpace(lines[0]), len(strings.Fields(req.Prompt)), req.MaxTokens), nil
}
