package host

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"pawscript/internal/util"
)

// ManifestFileName is the project-manifest file cmd/pawc looks for
// next to the entry script (SPEC_FULL.md §1.2).
const ManifestFileName = "paw.toml"

// manifestFile mirrors paw.toml's shape. Every field is optional — a
// program with no manifest at all is the common case.
type manifestFile struct {
	PawHome   string `toml:"paw_home"`
	StackSize int    `toml:"stack_size"`
}

// LoadManifest reads dir/paw.toml, if present, and merges it into cfg:
// the CLI flag always wins on conflict, so a manifest field only fills
// in a Configuration zero value (grounded on the teacher's own
// "flags override everything" convention in cmd/app/main.go).
// A missing manifest file is not an error.
func LoadManifest(dir string, cfg *util.Configuration) error {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var m manifestFile
	if _, err := toml.Decode(string(data), &m); err != nil {
		return err
	}

	if cfg.PawHome == "" {
		cfg.PawHome = m.PawHome
	}
	if cfg.StackSize == 0 {
		cfg.StackSize = m.StackSize
	}
	return nil
}
