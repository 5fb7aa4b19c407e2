package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	if err == nil {
		t.Fatalf("Load returned no error for a missing config file")
	}
	if _, ok := err.(*MissingConfigError); !ok {
		t.Fatalf("Load error = %T; want *MissingConfigError", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "not: [valid: yaml")
	_, err := Load(dir)
	if _, ok := err.(*InvalidYAMLError); !ok {
		t.Fatalf("Load error = %T (%v); want *InvalidYAMLError", err, err)
	}
}

func TestLoadMissingRequiredProperty(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "site:\n  defaultPath: \"/$\"\nlayers:\n  - name: primary\n    dsn: \"memory://\"\n")
	_, err := Load(dir)
	pe, ok := err.(*MissingPropertyError)
	if !ok {
		t.Fatalf("Load error = %T; want *MissingPropertyError", err)
	}
	if pe.Property != "modules.root" {
		t.Fatalf("MissingPropertyError.Property = %q; want modules.root", pe.Property)
	}
}

func TestLoadAppliesDefaultDurations(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DefaultConfigContent)
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Registry.ParsedDefaultTTL.String() != "5m0s" {
		t.Fatalf("ParsedDefaultTTL = %s; want 5m0s", c.Registry.ParsedDefaultTTL)
	}
	if c.Registry.ParsedEvictionInterval.String() != "30s" {
		t.Fatalf("ParsedEvictionInterval = %s; want 30s", c.Registry.ParsedEvictionInterval)
	}
	if c.Site.DefaultPath != "/$" {
		t.Fatalf("Site.DefaultPath = %q; want /$", c.Site.DefaultPath)
	}
	if len(c.Layers) != 1 || c.Layers[0].DSN != "memory://" {
		t.Fatalf("Layers = %+v; want one memory:// layer", c.Layers)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "modules:\n  root: \"./app\"\nsite:\n  defaultPath: \"/$\"\nlayers:\n  - name: primary\n    dsn: \"memory://\"\nregistry:\n  defaultTTL: \"not-a-duration\"\n")
	_, err := Load(dir)
	de, ok := err.(*InvalidDurationError)
	if !ok {
		t.Fatalf("Load error = %T; want *InvalidDurationError", err)
	}
	if de.Property != "registry.defaultTTL" {
		t.Fatalf("InvalidDurationError.Property = %q", de.Property)
	}
}
