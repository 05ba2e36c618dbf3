package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/moby/sys/atomicwriter"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

// ConfigFile is the configuration file name within the home directory.
const ConfigFile = "config.toml"

const fileHeader = "# gateway-sync settings. Manage with `gateway-sync config set|unset`.\n\n"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file. Dotted keys map to tables:
// "monitor.interval_ms" is interval_ms under [monitor].
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens dir/config.toml, creating dir if needed.
// An empty dir means ~/.gateway-sync.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".gateway-sync")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		path:   filepath.Join(dir, ConfigFile),
		values: make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

func (s *ConfigStore) Set(key string, value any) error {
	return s.SetMany(map[string]any{key: value})
}

// SetMany writes the file once. If the write fails the store is unchanged.
func (s *ConfigStore) SetMany(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	maps.Copy(next, values)
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *ConfigStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	next := maps.Clone(s.values)
	delete(next, key)
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Load rereads the file. A missing file is an empty configuration.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.values = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	values := make(map[string]any)
	flatten("", tree, values)
	s.values = values
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

// write replaces the file atomically (caller must hold lock).
func (s *ConfigStore) write(values map[string]any) error {
	body, err := toml.Marshal(nest(values))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	data := append([]byte(fileHeader), body...)
	if err := atomicwriter.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// flatten copies tree into out with dotted keys.
func flatten(prefix string, tree map[string]any, out map[string]any) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flatten(key, table, out)
			continue
		}
		out[key] = value
	}
}

// nest turns dotted keys into TOML tables. Keys are placed in sorted
// order; a key whose path collides with an existing value is kept at the
// top level under its full dotted name.
func nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		table, ok := descend(root, parts[:len(parts)-1])
		leaf := parts[len(parts)-1]
		if _, taken := table[leaf]; !ok || taken {
			root[key] = flat[key]
			continue
		}
		table[leaf] = flat[key]
	}
	return root
}

// descend walks path from root, creating tables as needed. It reports
// false when a path element already holds a plain value.
func descend(root map[string]any, path []string) (map[string]any, bool) {
	table := root
	for _, part := range path {
		child, exists := table[part]
		if !exists {
			next := make(map[string]any)
			table[part] = next
			table = next
			continue
		}
		next, isTable := child.(map[string]any)
		if !isTable {
			return nil, false
		}
		table = next
	}
	return table, true
}
