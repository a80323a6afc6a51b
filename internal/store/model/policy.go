package model

import (
	"time"

	"github.com/google/uuid"
)

// Policy is a named routing policy binding a default provider and
// per-provider invocation targets. At most one policy is active at a time;
// the active flag is flipped only through the store's Activate operation.
type Policy struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	Name            string    `gorm:"uniqueIndex;not null"`
	DefaultProvider Provider  `gorm:"column:default_provider;not null"`
	AWSTarget       string    `gorm:"column:aws_target"`
	AzureTarget     string    `gorm:"column:azure_target"`
	GCPTarget       string    `gorm:"column:gcp_target"`
	IsActive        bool      `gorm:"column:is_active;not null;default:false"`
	CreateTime      time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime      time.Time `gorm:"column:update_time;autoUpdateTime"`
}

type PolicyList []Policy

// Target returns the invocation target configured for the given provider,
// or the empty string if the provider has none.
func (p *Policy) Target(provider Provider) string {
	switch provider {
	case ProviderAWS:
		return p.AWSTarget
	case ProviderAzure:
		return p.AzureTarget
	case ProviderGCP:
		return p.GCPTarget
	}
	return ""
}

// SetTarget updates the invocation target for the given provider.
func (p *Policy) SetTarget(provider Provider, target string) {
	switch provider {
	case ProviderAWS:
		p.AWSTarget = target
	case ProviderAzure:
		p.AzureTarget = target
	case ProviderGCP:
		p.GCPTarget = target
	}
}

// ConfiguredProviders returns the providers that have a target, in the
// fixed fallback order.
func (p *Policy) ConfiguredProviders() []Provider {
	var configured []Provider
	for _, provider := range Providers() {
		if p.Target(provider) != "" {
			configured = append(configured, provider)
		}
	}
	return configured
}
