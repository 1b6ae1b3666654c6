package host

import (
	"os"
	"path/filepath"
	"testing"

	"pawscript/internal/util"
)

func TestLoadManifestFillsZeroFields(t *testing.T) {
	dir := t.TempDir()
	toml := "paw_home = \"/opt/paw\"\nstack_size = 8\n"
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(toml), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := util.Configuration{}
	if err := LoadManifest(dir, &cfg); err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if cfg.PawHome != "/opt/paw" {
		t.Errorf("PawHome = %q, want /opt/paw", cfg.PawHome)
	}
	if cfg.StackSize != 8 {
		t.Errorf("StackSize = %d, want 8", cfg.StackSize)
	}
}

func TestLoadManifestCLIFlagWins(t *testing.T) {
	dir := t.TempDir()
	toml := "paw_home = \"/opt/paw\"\n"
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(toml), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := util.Configuration{PawHome: "/flag/path"}
	if err := LoadManifest(dir, &cfg); err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if cfg.PawHome != "/flag/path" {
		t.Errorf("PawHome = %q, want the CLI-provided /flag/path to win", cfg.PawHome)
	}
}

func TestLoadManifestMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg := util.Configuration{}
	if err := LoadManifest(dir, &cfg); err != nil {
		t.Errorf("LoadManifest with no paw.toml: %v, want nil", err)
	}
}
