// Package credentials reads LLM API keys from key files.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoKey is returned when a key file holds no usable key.
var ErrNoKey = errors.New("no api key found")

// LoadAPIKey reads the key for provider from path. Two layouts are accepted:
// a file holding only the key, or TOML with a [<provider>] or [llm] section
// carrying api_key. The provider section wins over [llm].
func LoadAPIKey(path, provider string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return "", fmt.Errorf("%w in %s", ErrNoKey, path)
	}

	var sections map[string]any
	if _, err := toml.Decode(content, &sections); err != nil || len(sections) == 0 {
		if strings.ContainsAny(content, " \t\n=") {
			return "", fmt.Errorf("%w in %s: not a bare key or toml", ErrNoKey, path)
		}
		return content, nil
	}

	name := strings.ToLower(strings.ReplaceAll(provider, "-", ""))
	for _, section := range []string{name, "llm"} {
		if key := sectionKey(sections, section); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w in %s for provider %q", ErrNoKey, path, provider)
}

func sectionKey(sections map[string]any, name string) string {
	if name == "" {
		return ""
	}
	section, ok := sections[name].(map[string]any)
	if !ok {
		return ""
	}
	key, _ := section["api_key"].(string)
	return strings.TrimSpace(key)
}
