// Package allowlist holds values and paths that are known not to be PII,
// such as test fixtures or a company's public contact address.
package allowlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/digimosa/pii-scanner/internal/models"
)

// File is the on-disk YAML layout.
type File struct {
	Values []string `yaml:"values"`
	Paths  []string `yaml:"paths"`
}

// Allowlist checks whether a finding should be dropped.
type Allowlist struct {
	mu     sync.RWMutex
	values map[string]bool
	paths  []string
	path   string
	log    *zap.Logger
}

// New loads the allowlist at path. A missing file gives an empty list that
// Add will create on first write.
func New(path string, log *zap.Logger) (*Allowlist, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Allowlist{
		values: make(map[string]bool),
		path:   path,
		log:    log.With(zap.String("component", "allowlist")),
	}
	if path == "" {
		return a, nil
	}
	if err := a.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return a, nil
}

// Reload re-reads the file. On error the current content is kept.
func (a *Allowlist) Reload() error {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse allowlist %s: %w", a.path, err)
	}
	for _, p := range f.Paths {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid path pattern in allowlist: %q", p)
		}
	}

	values := make(map[string]bool, len(f.Values))
	for _, v := range f.Values {
		if v = strings.TrimSpace(v); v != "" {
			values[v] = true
		}
	}

	a.mu.Lock()
	a.values = values
	a.paths = f.Paths
	a.mu.Unlock()
	return nil
}

// Contains checks if the value is allowlisted.
func (a *Allowlist) Contains(value string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.values[strings.TrimSpace(value)]
}

// Allows reports whether f matches an allowlisted value or path pattern.
func (a *Allowlist) Allows(f models.Finding) bool {
	if a.Contains(f.Match) {
		return true
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	path := filepath.ToSlash(f.FilePath)
	for _, p := range a.paths {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// Add allowlists a value and persists the list to disk.
func (a *Allowlist) Add(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.values[value] {
		return nil
	}
	a.values[value] = true

	if a.path == "" {
		return nil
	}
	f := File{Paths: a.paths}
	for v := range a.values {
		f.Values = append(f.Values, v)
	}
	sort.Strings(f.Values)

	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	return os.WriteFile(a.path, data, 0o644)
}
