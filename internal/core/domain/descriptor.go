package domain

// Provider is a single security or behaviour provider within a provider config.
type Provider struct {
	// Role is the provider role, e.g. "authentication" or "identity-assertion".
	Role string

	// Name is the provider implementation name.
	Name string

	// Enabled indicates whether the provider is active.
	Enabled bool

	// Params holds provider parameters.
	Params map[string]string
}

// ProviderConfig is a named bundle of providers shared by topologies.
type ProviderConfig struct {
	// Name identifies the provider config. It becomes <name>.json.
	Name string

	// Providers are kept in declaration order.
	Providers []Provider
}

// Service is a backend service exposed by a topology.
type Service struct {
	// Name is the service role, e.g. "HIVE".
	Name string

	// Version is an optional service version.
	Version string

	// URLs are explicit backend URLs; empty when discovery provides them.
	URLs []string

	// Params holds service parameters.
	Params map[string]string
}

// Application is a gateway-hosted application exposed by a topology.
type Application struct {
	// Name is the application name.
	Name string

	// Params holds application parameters.
	Params map[string]string
}

// DescriptorConfig is a named, simplified topology description.
type DescriptorConfig struct {
	// Name is the topology name. It becomes <name>.json.
	Name string

	DiscoveryType          string
	DiscoveryAddress       string
	DiscoveryUser          string
	DiscoveryPasswordAlias string
	Cluster                string

	// ProviderConfigRef names the ProviderConfig this topology uses.
	ProviderConfigRef string

	// Services are kept in declaration order.
	Services []Service

	// Applications are kept in declaration order.
	Applications []Application
}

// ParseResult is everything extracted from one descriptor file.
// Names are unique within a result but not across files.
type ParseResult struct {
	// Providers maps provider config name to its configuration.
	Providers map[string]ProviderConfig

	// Descriptors are kept in file order.
	Descriptors []DescriptorConfig

	// Failures are resources whose property could not be parsed.
	// The rest of the file is still usable.
	Failures []ResourceFailure
}

// ResourceFailure is a single resource that could not be parsed.
type ResourceFailure struct {
	Kind ArtifactKind
	Name string

	// Err matches ErrParse.
	Err error
}

// ParseOptions narrows what a parser produces.
type ParseOptions struct {
	// Topology restricts output to the named descriptor and the provider
	// configs it references. Empty means everything.
	Topology string

	// DisabledServices are removed from the targeted descriptor.
	DisabledServices map[string]bool
}

// Targeted returns true if parsing is restricted to one topology.
func (o ParseOptions) Targeted() bool {
	return o.Topology != ""
}

// ServiceEnabled returns false if the service was disabled for this parse.
func (o ParseOptions) ServiceEnabled(name string) bool {
	return !o.DisabledServices[name]
}
