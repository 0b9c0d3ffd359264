package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-yaml/yaml"
	"github.com/mitchellh/go-homedir"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/voidshard/tmx"
	"github.com/voidshard/tmx/internal/clilog"
	"github.com/voidshard/tmx/store"
)

const desc = `Indexes .tmx maps into a sqlite database & queries cells out of it.

Maps are stored by name, which is the file name without the .tmx extension unless one is given.
Putting a map under a name already in use replaces it.`

type putCmd struct {
	Database string   `arg:"" help:"database file (created if it doesn't exist)"`
	Inputs   []string `arg:"" help:"input .tmx maps"`

	Name string `short:"n" help:"store the map under this name (only valid with a single input)"`
}

type atCmd struct {
	Database string `arg:"" help:"database file"`
	Map      string `arg:"" help:"name of stored map"`
	Layer    string `arg:"" help:"name of tile layer"`
	X        int    `arg:"" help:"x coord of cell (in tiles)"`
	Y        int    `arg:"" help:"y coord of cell (in tiles)"`
}

type mapsCmd struct {
	Database string `arg:"" help:"database file"`
}

var cli struct {
	Config   string `short:"c" help:"loader config file (toml)"`
	LogLevel string `help:"log level (debug, info, warn, error). Defaults to config setting"`

	Put  putCmd  `cmd:"" help:"load & index maps"`
	At   atCmd   `cmd:"" help:"print the cell at x,y of a stored map layer"`
	Maps mapsCmd `cmd:"" help:"list stored maps"`
}

func main() {
	ctx := kong.Parse(&cli, kong.Name("tmx-index"), kong.Description(desc))

	cfg, err := loadConfig()
	ctx.FatalIfErrorf(err)

	ctx.FatalIfErrorf(ctx.Run(cfg))
}

func (c *putCmd) Run(cfg *tmx.Config) error {
	if c.Name != "" && len(c.Inputs) > 1 {
		return fmt.Errorf("--name is only valid with a single input, got %d", len(c.Inputs))
	}

	s, err := openStore(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	loader := tmx.NewLoader(tmx.WithConfig(cfg))
	for _, in := range c.Inputs {
		fpath, err := homedir.Expand(in)
		if err != nil {
			return err
		}

		m, err := loader.LoadMap(fpath)
		if err != nil {
			return err
		}

		name := c.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(fpath), filepath.Ext(fpath))
		}

		err = s.Put(name, m)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", in, err)
		}
		log.Info("indexed map", "file", in, "name", name, "layers", len(m.TileLayers()))
	}

	return nil
}

func (c *atCmd) Run(cfg *tmx.Config) error {
	s, err := openStore(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	cell, err := s.At(c.Map, c.Layer, c.X, c.Y)
	if err != nil {
		return err
	}

	out := struct {
		GID        uint32          `yaml:"gid"`
		Flips      tmx.Flips       `yaml:"flips"`
		Properties *tmx.Properties `yaml:"properties,omitempty"`
	}{GID: cell.GID, Flips: cell.Flips()}

	if cell.GID != 0 {
		props, err := s.Properties(c.Map, cell.GID)
		if err != nil {
			return err
		}
		if props.Len() > 0 {
			out.Properties = props
		}
	}

	return printYAML(out)
}

func (c *mapsCmd) Run(cfg *tmx.Config) error {
	s, err := openStore(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	maps, err := s.Maps()
	if err != nil {
		return err
	}
	return printYAML(maps)
}

func openStore(database string) (*store.Store, error) {
	fpath, err := homedir.Expand(database)
	if err != nil {
		return nil, err
	}
	return store.Open(fpath)
}

func printYAML(in interface{}) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

// loadConfig reads the config file (if given) & sets up logging
func loadConfig() (*tmx.Config, error) {
	cfg := tmx.DefaultConfig()
	if cli.Config != "" {
		fpath, err := homedir.Expand(cli.Config)
		if err != nil {
			return nil, err
		}
		cfg, err = tmx.LoadConfig(fpath)
		if err != nil {
			return nil, err
		}
	}

	level := cfg.LogLevel
	if cli.LogLevel != "" {
		level = cli.LogLevel
	}
	return cfg, clilog.Setup(level)
}
