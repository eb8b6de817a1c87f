package types

import (
	"fmt"
	"strings"
	"time"
)

// Provider names a text-generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// ParseProvider normalizes a provider tag read from configuration or flags.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderOpenAI, ProviderGemini, ProviderOllama:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q (expected openai, gemini or ollama)", name)
	}
}

// Secret holds a credential. It never prints its value.
type Secret string

// String implements fmt.Stringer. Always returns a redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "Secret([REDACTED])"
}

// Value returns the raw credential.
func (s Secret) Value() string {
	return string(s)
}

// ProviderConfig binds one agent role to a backend. It is passed by value and
// not modified after construction.
type ProviderConfig struct {
	Name    Provider      `json:"name"`
	Model   string        `json:"model"`
	APIKey  Secret        `json:"-"`
	BaseURL string        `json:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"` // zero means no timeout
}

// WithAPIKey returns a copy of the config carrying the given credential.
func (c ProviderConfig) WithAPIKey(key Secret) ProviderConfig {
	c.APIKey = key
	return c
}
