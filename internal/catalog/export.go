package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ExportTOML renders the catalog as a TOML document.
func (c *Catalog) ExportTOML() (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c.Groups()); err != nil {
		return "", fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.String(), nil
}

// ExportJSON renders the catalog as indented JSON.
func (c *Catalog) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(c.Groups(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding catalog: %w", err)
	}
	return string(data), nil
}

// LoadFile reads a TOML catalog file and returns a catalog built from it.
// Groups absent from the file fall back to the builtin defaults, so a file
// may override just one group.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var g Groups
	if err := toml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	def := Default().Groups()
	if len(g.RequireUser) == 0 {
		g.RequireUser = def.RequireUser
	}
	if len(g.AutoApprove) == 0 {
		g.AutoApprove = def.AutoApprove
	}
	if len(g.AutoDecline) == 0 {
		g.AutoDecline = def.AutoDecline
	}
	if len(g.Critical) == 0 {
		g.Critical = def.Critical
	}
	if len(g.Triggers) == 0 {
		g.Triggers = def.Triggers
	}
	if len(g.Prefixes) == 0 {
		g.Prefixes = def.Prefixes
	}
	if len(g.Keywords) == 0 {
		g.Keywords = def.Keywords
	}

	return New(g), nil
}
