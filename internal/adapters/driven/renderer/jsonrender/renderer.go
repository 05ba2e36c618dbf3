// Package jsonrender renders provider configs and descriptors to the JSON
// documents the gateway reads from its shared-providers and descriptors
// directories.
package jsonrender

import (
	"bytes"
	"encoding/json"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

const indent = "  "

type providerDTO struct {
	Role    string            `json:"role"`
	Name    string            `json:"name"`
	Enabled string            `json:"enabled"`
	Params  map[string]string `json:"params,omitempty"`
}

type providerConfigDTO struct {
	Providers []providerDTO `json:"providers"`
}

type serviceDTO struct {
	Name    string            `json:"name"`
	Version string            `json:"version,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	URLs    []string          `json:"urls,omitempty"`
}

type applicationDTO struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

type descriptorDTO struct {
	DiscoveryType     string           `json:"discovery-type,omitempty"`
	DiscoveryAddress  string           `json:"discovery-address,omitempty"`
	DiscoveryUser     string           `json:"discovery-user,omitempty"`
	DiscoveryPwdAlias string           `json:"discovery-pwd-alias,omitempty"`
	ProviderConfigRef string           `json:"provider-config-ref,omitempty"`
	Cluster           string           `json:"cluster,omitempty"`
	Services          []serviceDTO     `json:"services"`
	Applications      []applicationDTO `json:"applications,omitempty"`
}

// Renderer produces indented JSON terminated by a newline. Map keys are
// sorted by encoding/json, so output is stable for equal input.
type Renderer struct{}

// New creates a new renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderProviderConfig renders a shared provider config.
func (r *Renderer) RenderProviderConfig(cfg domain.ProviderConfig) ([]byte, error) {
	dto := providerConfigDTO{Providers: make([]providerDTO, 0, len(cfg.Providers))}
	for _, p := range cfg.Providers {
		enabled := "false"
		if p.Enabled {
			enabled = "true"
		}
		dto.Providers = append(dto.Providers, providerDTO{
			Role:    p.Role,
			Name:    p.Name,
			Enabled: enabled,
			Params:  p.Params,
		})
	}
	return marshal(dto)
}

// RenderDescriptor renders a topology descriptor.
func (r *Renderer) RenderDescriptor(desc domain.DescriptorConfig) ([]byte, error) {
	dto := descriptorDTO{
		DiscoveryType:     desc.DiscoveryType,
		DiscoveryAddress:  desc.DiscoveryAddress,
		DiscoveryUser:     desc.DiscoveryUser,
		DiscoveryPwdAlias: desc.DiscoveryPasswordAlias,
		ProviderConfigRef: desc.ProviderConfigRef,
		Cluster:           desc.Cluster,
		Services:          make([]serviceDTO, 0, len(desc.Services)),
	}
	for _, svc := range desc.Services {
		dto.Services = append(dto.Services, serviceDTO{
			Name:    svc.Name,
			Version: svc.Version,
			Params:  svc.Params,
			URLs:    svc.URLs,
		})
	}
	for _, app := range desc.Applications {
		dto.Applications = append(dto.Applications, applicationDTO{
			Name:   app.Name,
			Params: app.Params,
		})
	}
	return marshal(dto)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	// Encode appends the trailing newline.
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
