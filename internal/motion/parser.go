package motion

import (
	"fmt"
	"io/fs"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadLibrary reads and builds a clip library from a YAML file on disk.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read motion library %s: %w", path, err)
	}
	return ParseLibrary(data)
}

// LoadLibraryFS reads and builds a clip library from a file system, e.g. the
// embedded data directory.
func LoadLibraryFS(fsys fs.FS, path string) (*Library, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read motion library %s: %w", path, err)
	}
	return ParseLibrary(data)
}

// ParseLibrary parses YAML clip library data and builds the Library.
func ParseLibrary(data []byte) (*Library, error) {
	var desc LibraryDesc
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse motion library: %w", err)
	}

	lib, err := Build(&desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build motion library: %w", err)
	}

	log.Printf("[MotionLibrary] Loaded %q: %d segments, %d tags, %.0f Hz, horizon %.2fs",
		lib.Name(), lib.NumSegments(), lib.NumTags(), lib.SampleRate(), lib.TimeHorizon())
	return lib, nil
}
