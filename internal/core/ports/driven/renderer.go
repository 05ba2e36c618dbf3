package driven

import "github.com/custodia-labs/gateway-sync/internal/core/domain"

// Renderer serialises configs to their canonical byte form.
// Implementations must be deterministic: equal input yields equal bytes,
// because artifacts are compared byte for byte.
type Renderer interface {
	// RenderProviderConfig renders a shared provider config.
	RenderProviderConfig(cfg domain.ProviderConfig) ([]byte, error)

	// RenderDescriptor renders a topology descriptor.
	RenderDescriptor(desc domain.DescriptorConfig) ([]byte, error)
}
