package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Package artifact names. A package directory contains exactly these two
// required files.
const (
	ManifestFile = "plugin.json"
	ScriptFile   = "plugin.lua"
)

// versionPattern accepts exactly three dot-separated non-negative integers.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// LoadDescriptor reads and validates a manifest file.
//
// The enabled flag defaults to true when absent; all other optional fields
// default to empty or false.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	d := Descriptor{Enabled: true}
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks the descriptor's structural and semantic correctness.
// It is a pure check with no side effects.
//
// Only identity fields are validated; tags, permissions, parameters,
// author, priority and autoLoad are cosmetic and never rejected.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return ErrMissingID
	}
	if d.Name == "" {
		return ErrMissingName
	}
	if d.Version == "" {
		return ErrMissingVersion
	}
	if d.Description == "" {
		return ErrMissingDescription
	}
	if d.Category == "" {
		return ErrMissingCategory
	}
	if !validCategories[d.Category] {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, d.Category)
	}
	if !versionPattern.MatchString(d.Version) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, d.Version)
	}
	return nil
}
