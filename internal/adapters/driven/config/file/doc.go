// Package file provides the TOML-backed configuration store.
//
// Settings are addressed by dotted keys ("monitor.interval_ms") and stored
// as nested tables:
//
//	[monitor]
//	interval_ms = 10000
//	descriptors_dir = "/etc/gateway/descriptors"
package file
