package apikeys

import (
	"fmt"
	"os"
	"strings"

	"github.com/loayabdalslam/Orchestrator/pkg/interfaces/types"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// EnvVar returns the environment variable consulted for a provider's key.
func EnvVar(provider types.Provider) string {
	return strings.ToUpper(string(provider)) + "_API_KEY"
}

// RequiresKey reports whether the provider needs a credential at all.
func RequiresKey(provider types.Provider) bool {
	return provider != types.ProviderOllama
}

// Resolve returns the API key for a provider. An explicit value wins,
// otherwise <PROVIDER>_API_KEY is read from the environment.
func Resolve(provider types.Provider, explicit types.Secret) (types.Secret, error) {
	return ResolveWith(provider, explicit, os.LookupEnv)
}

// ResolveWith is Resolve with a custom environment lookup.
func ResolveWith(provider types.Provider, explicit types.Secret, lookup LookupFunc) (types.Secret, error) {
	if explicit.Value() != "" {
		return explicit, nil
	}
	if lookup != nil {
		if v, ok := lookup(EnvVar(provider)); ok && strings.TrimSpace(v) != "" {
			return types.Secret(strings.TrimSpace(v)), nil
		}
	}
	if !RequiresKey(provider) {
		return "", nil
	}
	return "", fmt.Errorf("API key for %s not found. Please set %s environment variable", provider, EnvVar(provider))
}
