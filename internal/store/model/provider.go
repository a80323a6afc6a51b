package model

import "fmt"

// Provider identifies one of the supported cloud function backends.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderAzure Provider = "azure"
	ProviderGCP   Provider = "gcp"
)

// Providers returns all supported providers in the fixed fallback order
// used by the router when walking candidates.
func Providers() []Provider {
	return []Provider{ProviderAWS, ProviderAzure, ProviderGCP}
}

// ParseProvider validates a provider name from external input.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAWS, ProviderAzure, ProviderGCP:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

func (p Provider) String() string {
	return string(p)
}
