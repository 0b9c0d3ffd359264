package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mitchellh/go-homedir"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/voidshard/tmx"
	"github.com/voidshard/tmx/internal/clilog"
	"github.com/voidshard/tmx/render"
)

const desc = `Renders a preview image of a .tmx map (orthogonal maps only). Writes png or webp depending on the output extension.`

var cli struct {
	Input  string `short:"i" help:"input .tmx map (required)"`
	Output string `short:"o" help:"where to write output image. Defaults to input + .png. Overwrites output file if it exists."`

	Scale float64 `default:"1" help:"scale output image by this factor"`

	Config   string `short:"c" help:"loader config file (toml)"`
	LogLevel string `help:"log level (debug, info, warn, error). Defaults to config setting"`
}

func main() {
	kong.Parse(&cli, kong.Name("map-render"), kong.Description(desc))

	input, err := homedir.Expand(cli.Input)
	if err != nil {
		panic(err)
	}
	if !fileExists(input) {
		panic(fmt.Sprintf("input file not found: %s", cli.Input))
	}

	if cli.Output == "" {
		cli.Output = input + ".png"
	}
	output, err := homedir.Expand(cli.Output)
	if err != nil {
		panic(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// everything is read via one filesystem rooted at / so that paths
	// going up out of the map's directory (eg. ../tilesets/a.tsx) work
	abs, err := filepath.Abs(input)
	if err != nil {
		panic(err)
	}
	fsys := os.DirFS("/")
	mapPath := strings.TrimPrefix(filepath.ToSlash(abs), "/")

	loader := tmx.NewLoader(tmx.WithConfig(cfg), tmx.WithFetcher(tmx.FSFetcher(fsys)))
	m, err := loader.LoadMap(mapPath)
	if err != nil {
		log.Error("failed to load map", "file", input, "err", err)
		os.Exit(1)
	}

	img, err := render.New(fsys).Render(m, mapPath)
	if err != nil {
		log.Error("failed to render map", "file", input, "err", err)
		os.Exit(1)
	}
	img = render.Scale(img, cli.Scale)

	f, err := os.Create(output)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	err = render.Encode(f, img, render.FormatFor(output))
	if err != nil {
		panic(err)
	}

	log.Info("wrote image", "file", output, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
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

// fileExists checks if file exists
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
