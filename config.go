package tmx

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config includes settings for a Loader
type Config struct {
	// LookupZeroGID looks gid 0 up in the tilesets like any other gid,
	// rather than treating it as an empty cell. This only finds a tile
	// if some tileset has firstgid 0.
	LookupZeroGID bool `toml:"lookup_zero_gid"`

	// MaxTasks limits how many fetch / decompression tasks of one parse
	// run at once. 0 is unlimited.
	MaxTasks int `toml:"max_tasks"`

	// LogLevel is for command line tools, the library only logs to the
	// logger it's given.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns a loader config with default settings.
func DefaultConfig() *Config {
	return &Config{
		LookupZeroGID: false,
		MaxTasks:      8,
		LogLevel:      "info",
	}
}

// LoadConfig reads a TOML config file. Anything not set in the file keeps
// its default.
func LoadConfig(fname string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(fname, cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", fname, err)
	}
	return cfg, nil
}
