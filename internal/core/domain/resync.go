package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Notification property keys.
const (
	// PropertyTopologyName names the topology a notification is about.
	PropertyTopologyName = "gateway.auto.discovery.topology.name"

	// PropertyServiceEnabledPrefix prefixes per-service enablement flags,
	// e.g. gateway.auto.discovery.enabled.HIVE=false.
	PropertyServiceEnabledPrefix = "gateway.auto.discovery.enabled."
)

// ResyncRequest asks for one topology to be resynchronised regardless of
// what the periodic scan last saw.
type ResyncRequest struct {
	// Topology is the resource name to recompute.
	Topology string

	// Properties is the full flat property set of the notification.
	Properties map[string]string
}

// NewResyncRequest builds a request from a notification property set.
// A missing or blank topology name yields ErrInvalidNotification.
func NewResyncRequest(properties map[string]string) (ResyncRequest, error) {
	topology := strings.TrimSpace(properties[PropertyTopologyName])
	if topology == "" {
		return ResyncRequest{}, fmt.Errorf("%w: %s is missing", ErrInvalidNotification, PropertyTopologyName)
	}

	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}

	return ResyncRequest{Topology: topology, Properties: props}, nil
}

// ParseOptions converts the request into parser options.
func (r ResyncRequest) ParseOptions() ParseOptions {
	opts := ParseOptions{Topology: r.Topology}
	for key, value := range r.Properties {
		if !strings.HasPrefix(key, PropertyServiceEnabledPrefix) {
			continue
		}
		service := strings.TrimPrefix(key, PropertyServiceEnabledPrefix)
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if service == "" || err != nil || enabled {
			continue
		}
		if opts.DisabledServices == nil {
			opts.DisabledServices = make(map[string]bool)
		}
		opts.DisabledServices[service] = true
	}
	return opts
}
