package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-yaml/yaml"
	"github.com/mitchellh/go-homedir"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/voidshard/tmx"
	"github.com/voidshard/tmx/internal/clilog"
)

const desc = `Prints a summary of a .tmx map or .tsx tileset (including any external tilesets it references).`

var cli struct {
	Input string `arg:"" help:"input .tmx map or .tsx tileset"`

	JSON bool `help:"print json rather than yaml"`
	CSV  bool `help:"include tile layer grids in csv format"`

	Config   string `short:"c" help:"loader config file (toml)"`
	LogLevel string `help:"log level (debug, info, warn, error). Defaults to config setting"`
}

type tileSetSummary struct {
	FirstGID   uint32          `json:"firstgid" yaml:"firstgid"`
	Name       string          `json:"name" yaml:"name"`
	Source     string          `json:"source,omitempty" yaml:"source,omitempty"`
	TileWidth  int             `json:"tilewidth" yaml:"tilewidth"`
	TileHeight int             `json:"tileheight" yaml:"tileheight"`
	Image      string          `json:"image,omitempty" yaml:"image,omitempty"`
	Tiles      int             `json:"tiles" yaml:"tiles"`
	Terrains   []string        `json:"terrains,omitempty" yaml:"terrains,omitempty"`
	Properties *tmx.Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type layerSummary struct {
	Name       string          `json:"name" yaml:"name"`
	Kind       tmx.LayerKind   `json:"kind" yaml:"kind"`
	Visible    bool            `json:"visible" yaml:"visible"`
	Opacity    float64         `json:"opacity" yaml:"opacity"`
	Tiles      int             `json:"tiles,omitempty" yaml:"tiles,omitempty"`
	Flipped    int             `json:"flipped,omitempty" yaml:"flipped,omitempty"`
	Objects    int             `json:"objects,omitempty" yaml:"objects,omitempty"`
	Image      string          `json:"image,omitempty" yaml:"image,omitempty"`
	Properties *tmx.Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	CSV        string          `json:"csv,omitempty" yaml:"csv,omitempty"`
}

type mapSummary struct {
	Orientation string           `json:"orientation" yaml:"orientation"`
	Width       int              `json:"width" yaml:"width"`
	Height      int              `json:"height" yaml:"height"`
	TileWidth   int              `json:"tilewidth" yaml:"tilewidth"`
	TileHeight  int              `json:"tileheight" yaml:"tileheight"`
	Properties  *tmx.Properties  `json:"properties,omitempty" yaml:"properties,omitempty"`
	TileSets    []tileSetSummary `json:"tilesets" yaml:"tilesets"`
	Layers      []layerSummary   `json:"layers" yaml:"layers"`
}

type summary struct {
	File    string          `json:"file" yaml:"file"`
	Map     *mapSummary     `json:"map,omitempty" yaml:"map,omitempty"`
	TileSet *tileSetSummary `json:"tileset,omitempty" yaml:"tileset,omitempty"`
}

func main() {
	kong.Parse(&cli, kong.Name("tmxinfo"), kong.Description(desc))

	loader, err := newLoader()
	if err != nil {
		panic(err)
	}

	doc, err := loader.Load(cli.Input)
	if err != nil {
		log.Error("failed to load", "file", cli.Input, "err", err)
		os.Exit(1)
	}

	s := summary{File: cli.Input}
	if doc.Map != nil {
		s.Map = summariseMap(doc.Map)
	} else {
		ts := summariseTileSet(doc.TileSet)
		s.TileSet = &ts
	}

	var out []byte
	if cli.JSON {
		out, err = json.MarshalIndent(s, "", "  ")
	} else {
		out, err = yaml.Marshal(s)
	}
	if err != nil {
		panic(err)
	}

	fmt.Println(string(out))
}

// newLoader builds a loader from the config file (if given) & sets up logging
func newLoader() (*tmx.Loader, error) {
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
	if err := clilog.Setup(level); err != nil {
		return nil, err
	}

	return tmx.NewLoader(tmx.WithConfig(cfg)), nil
}

func summariseTileSet(ts *tmx.TileSet) tileSetSummary {
	s := tileSetSummary{
		FirstGID:   ts.FirstGID,
		Name:       ts.Name,
		Source:     ts.Source,
		TileWidth:  ts.TileWidth,
		TileHeight: ts.TileHeight,
		Tiles:      len(ts.Tiles),
	}
	if ts.Image != nil {
		s.Image = ts.Image.Source
	}
	if ts.Properties.Len() > 0 {
		s.Properties = ts.Properties
	}
	for _, t := range ts.Terrains {
		s.Terrains = append(s.Terrains, t.Name)
	}
	return s
}

func summariseMap(m *tmx.Map) *mapSummary {
	s := &mapSummary{
		Orientation: m.Orientation,
		Width:       m.Width,
		Height:      m.Height,
		TileWidth:   m.TileWidth,
		TileHeight:  m.TileHeight,
		TileSets:    []tileSetSummary{},
		Layers:      []layerSummary{},
	}
	if m.Properties.Len() > 0 {
		s.Properties = m.Properties
	}

	for _, ts := range m.TileSets {
		s.TileSets = append(s.TileSets, summariseTileSet(ts))
	}

	for _, l := range m.Layers {
		info := l.Info()
		ls := layerSummary{
			Name:    info.Name,
			Kind:    l.Kind(),
			Visible: info.Visible,
			Opacity: info.Opacity,
		}
		if info.Properties.Len() > 0 {
			ls.Properties = info.Properties
		}

		switch v := l.(type) {
		case *tmx.TileLayer:
			for i, t := range v.Tiles {
				if t == nil {
					continue
				}
				ls.Tiles++
				if v.HFlip[i] || v.VFlip[i] || v.DFlip[i] {
					ls.Flipped++
				}
			}
			if cli.CSV {
				ls.CSV = string(v.EncodeCSV())
			}
		case *tmx.ObjectLayer:
			ls.Objects = len(v.Objects)
		case *tmx.ImageLayer:
			if v.Image != nil {
				ls.Image = v.Image.Source
			}
		}

		s.Layers = append(s.Layers, ls)
	}

	return s
}
