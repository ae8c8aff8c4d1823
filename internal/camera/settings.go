package camera

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadSettings reads the [camera] table from a TOML file. Used for the
// startup defaults and by the hot-reload watcher.
func LoadSettings(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read camera settings: %w", err)
	}

	var raw struct {
		Camera Params `toml:"camera"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Params{}, fmt.Errorf("failed to parse camera settings: %w", err)
	}
	return raw.Camera, nil
}
