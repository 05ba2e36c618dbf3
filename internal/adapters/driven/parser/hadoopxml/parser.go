package hadoopxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// ProviderConfigsPrefix marks a property declaring shared provider configs.
const ProviderConfigsPrefix = "providerConfigs:"

const (
	entrySeparator = "#"
	appPrefix      = "app:"
)

// Descriptor keys.
const (
	keyDiscoveryType          = "discoveryType"
	keyDiscoveryAddress       = "discoveryAddress"
	keyDiscoveryUser          = "discoveryUser"
	keyDiscoveryPasswordAlias = "discoveryPasswordAlias"
	keyCluster                = "cluster"
	keyProviderConfigRef      = "providerConfigRef"
)

// Provider and service attributes.
const (
	attrRole        = "role"
	attrName        = "name"
	attrEnabled     = "enabled"
	attrParamPrefix = "param."
	attrURL         = "url"
	attrVersion     = "version"
)

// Ensure Parser implements the interface.
var _ driven.DescriptorParser = (*Parser)(nil)

type xmlConfiguration struct {
	XMLName    xml.Name      `xml:"configuration"`
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

// Parser reads .hxr descriptor files.
type Parser struct{}

// New creates a new parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads the descriptor file at path.
func (p *Parser) Parse(ctx context.Context, path string, opts domain.ParseOptions) (*domain.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadable, err)
	}
	return p.ParseBytes(path, data, opts)
}

// ParseBytes parses descriptor content. path is used for error reporting only.
func (p *Parser) ParseBytes(path string, data []byte, opts domain.ParseOptions) (*domain.ParseResult, error) {
	var cfg xmlConfiguration
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return nil, &domain.ParseError{Path: path, Err: err}
	}

	result := &domain.ParseResult{Providers: make(map[string]domain.ProviderConfig)}
	seenDescriptors := make(map[string]bool)
	var failedRefs []string

	for _, prop := range cfg.Properties {
		name := strings.TrimSpace(prop.Name)
		if name == "" {
			return nil, &domain.ParseError{Path: path, Err: errors.New("property without a name")}
		}

		if strings.HasPrefix(name, ProviderConfigsPrefix) {
			if err := addProviderConfigs(result, path, name, prop.Value); err != nil {
				return nil, &domain.ParseError{Path: path, Resource: name, Err: err}
			}
			continue
		}

		if opts.Targeted() && name != opts.Topology {
			continue
		}
		if seenDescriptors[name] {
			return nil, &domain.ParseError{Path: path, Resource: name, Err: errors.New("duplicate descriptor")}
		}
		seenDescriptors[name] = true

		desc, err := parseDescriptor(name, prop.Value, opts)
		if err != nil {
			result.Failures = append(result.Failures, domain.ResourceFailure{
				Kind: domain.ArtifactDescriptor,
				Name: name,
				Err:  &domain.ParseError{Path: path, Resource: name, Err: err},
			})
			if desc.ProviderConfigRef != "" {
				failedRefs = append(failedRefs, desc.ProviderConfigRef)
			}
			continue
		}
		result.Descriptors = append(result.Descriptors, desc)
	}

	if opts.Targeted() {
		keepReferencedProviders(result, failedRefs)
	}
	return result, nil
}

// addProviderConfigs registers every provider config name declared by one
// property. Bad provider content fails each declared config on its own;
// bad or duplicate names fail the file.
func addProviderConfigs(result *domain.ParseResult, path, name, value string) error {
	var names []string
	for _, configName := range strings.Split(strings.TrimPrefix(name, ProviderConfigsPrefix), ",") {
		configName = strings.TrimSpace(configName)
		if configName == "" {
			continue
		}
		if providerDeclared(result, configName) || slices.Contains(names, configName) {
			return fmt.Errorf("duplicate provider config %q", configName)
		}
		names = append(names, configName)
	}
	if len(names) == 0 {
		return errors.New("no provider config names declared")
	}

	providers, err := parseProviders(value)
	for _, configName := range names {
		if err != nil {
			result.Failures = append(result.Failures, domain.ResourceFailure{
				Kind: domain.ArtifactSharedProvider,
				Name: configName,
				Err:  &domain.ParseError{Path: path, Resource: configName, Err: err},
			})
			continue
		}
		result.Providers[configName] = domain.ProviderConfig{
			Name:      configName,
			Providers: cloneProviders(providers),
		}
	}
	return nil
}

func providerDeclared(result *domain.ParseResult, name string) bool {
	if _, ok := result.Providers[name]; ok {
		return true
	}
	for _, f := range result.Failures {
		if f.Kind == domain.ArtifactSharedProvider && f.Name == name {
			return true
		}
	}
	return false
}

func parseProviders(value string) ([]domain.Provider, error) {
	var providers []domain.Provider
	byRole := make(map[string]int)

	for _, entry := range splitEntries(value) {
		key, val, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q is not key=value", entry)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)

		if key == attrRole {
			if val == "" {
				return nil, errors.New("empty provider role")
			}
			if _, dup := byRole[val]; dup {
				return nil, fmt.Errorf("duplicate provider role %q", val)
			}
			byRole[val] = len(providers)
			providers = append(providers, domain.Provider{Role: val, Enabled: true, Params: map[string]string{}})
			continue
		}

		role, attr, ok := strings.Cut(key, ".")
		idx, known := byRole[role]
		if !ok || !known {
			return nil, fmt.Errorf("entry %q does not belong to a declared role", entry)
		}
		provider := &providers[idx]

		switch {
		case attr == attrName:
			provider.Name = val
		case attr == attrEnabled:
			enabled, err := strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("provider %s: invalid enabled value %q", role, val)
			}
			provider.Enabled = enabled
		case strings.HasPrefix(attr, attrParamPrefix) && len(attr) > len(attrParamPrefix):
			provider.Params[strings.TrimPrefix(attr, attrParamPrefix)] = val
		default:
			return nil, fmt.Errorf("provider %s: unknown attribute %q", role, attr)
		}
	}

	for _, provider := range providers {
		if provider.Name == "" {
			return nil, fmt.Errorf("provider %s has no name", provider.Role)
		}
	}
	return providers, nil
}

func parseDescriptor(name, value string, opts domain.ParseOptions) (domain.DescriptorConfig, error) {
	desc := domain.DescriptorConfig{Name: name}
	services := make(map[string]int)
	apps := make(map[string]int)

	for _, entry := range splitEntries(value) {
		if rest, ok := strings.CutPrefix(entry, appPrefix); ok {
			if err := addApplication(&desc, apps, rest); err != nil {
				return desc, err
			}
			continue
		}

		key, val, hasValue := strings.Cut(entry, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)

		if hasValue && setDescriptorField(&desc, key, val) {
			continue
		}

		service, attr, hasAttr := strings.Cut(key, ":")
		service = strings.TrimSpace(service)
		if !validServiceName(service) || hasValue != hasAttr {
			return desc, fmt.Errorf("unrecognised entry %q", entry)
		}

		idx, exists := services[service]
		if !exists {
			idx = len(desc.Services)
			services[service] = idx
			desc.Services = append(desc.Services, domain.Service{Name: service, Params: map[string]string{}})
		}
		if !hasAttr {
			continue
		}

		svc := &desc.Services[idx]
		switch attr = strings.TrimSpace(attr); attr {
		case attrURL:
			svc.URLs = append(svc.URLs, val)
		case attrVersion:
			svc.Version = val
		case "":
			return desc, fmt.Errorf("service %s: empty attribute in %q", service, entry)
		default:
			svc.Params[attr] = val
		}
	}

	if len(opts.DisabledServices) > 0 {
		enabled := desc.Services[:0]
		for _, svc := range desc.Services {
			if opts.ServiceEnabled(svc.Name) {
				enabled = append(enabled, svc)
			}
		}
		desc.Services = enabled
	}
	return desc, nil
}

func setDescriptorField(desc *domain.DescriptorConfig, key, val string) bool {
	switch key {
	case keyDiscoveryType:
		desc.DiscoveryType = val
	case keyDiscoveryAddress:
		desc.DiscoveryAddress = val
	case keyDiscoveryUser:
		desc.DiscoveryUser = val
	case keyDiscoveryPasswordAlias:
		desc.DiscoveryPasswordAlias = val
	case keyCluster:
		desc.Cluster = val
	case keyProviderConfigRef:
		desc.ProviderConfigRef = val
	default:
		return false
	}
	return true
}

// addApplication handles "app:<name>" and "app:<name>:<key>=<value>".
func addApplication(desc *domain.DescriptorConfig, apps map[string]int, rest string) error {
	name, param, hasParam := strings.Cut(rest, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("application without a name in %q", appPrefix+rest)
	}

	idx, exists := apps[name]
	if !exists {
		idx = len(desc.Applications)
		apps[name] = idx
		desc.Applications = append(desc.Applications, domain.Application{Name: name, Params: map[string]string{}})
	}
	if !hasParam {
		return nil
	}

	key, val, ok := strings.Cut(param, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("application %s: parameter %q is not key=value", name, param)
	}
	desc.Applications[idx].Params[key] = strings.TrimSpace(val)
	return nil
}

// keepReferencedProviders drops provider configs, and their failures, that
// no kept descriptor uses. extraRefs come from descriptors that failed.
func keepReferencedProviders(result *domain.ParseResult, extraRefs []string) {
	referenced := make(map[string]bool)
	for _, desc := range result.Descriptors {
		if desc.ProviderConfigRef != "" {
			referenced[desc.ProviderConfigRef] = true
		}
	}
	for _, ref := range extraRefs {
		referenced[ref] = true
	}
	for name := range result.Providers {
		if !referenced[name] {
			delete(result.Providers, name)
		}
	}

	failures := result.Failures[:0]
	for _, f := range result.Failures {
		if f.Kind != domain.ArtifactSharedProvider || referenced[f.Name] {
			failures = append(failures, f)
		}
	}
	result.Failures = failures
}

// validServiceName accepts role names such as HIVE or WEBHDFS.
func validServiceName(name string) bool {
	if name == "" {
		return false
	}
	first := name[0]
	if first < 'A' || first > 'Z' {
		return false
	}
	return !strings.ContainsAny(name, " \t=")
}

func splitEntries(value string) []string {
	parts := strings.Split(value, entrySeparator)
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			entries = append(entries, part)
		}
	}
	return entries
}

func cloneProviders(providers []domain.Provider) []domain.Provider {
	out := make([]domain.Provider, len(providers))
	for i, p := range providers {
		params := make(map[string]string, len(p.Params))
		for k, v := range p.Params {
			params[k] = v
		}
		p.Params = params
		out[i] = p
	}
	return out
}
