package tmx

import (
	"bytes"
	"fmt"
	"io"

	log "gopkg.in/inconshreveable/log15.v2"
)

// Loader reads TMX maps & TSX tilesets. A Loader holds no per-document
// state so it's safe to use for concurrent parses.
type Loader struct {
	fetch      Fetcher
	decompress Decompressor
	cfg        *Config
	log        log.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithFetcher sets where documents (including external tilesets) are read from.
// Defaults to the local disk.
func WithFetcher(f Fetcher) Option {
	return func(l *Loader) {
		l.fetch = f
	}
}

// WithDecompressor replaces the gzip / zlib codecs used for tile data
func WithDecompressor(d Decompressor) Option {
	return func(l *Loader) {
		l.decompress = d
	}
}

// WithConfig sets loader settings
func WithConfig(cfg *Config) Option {
	return func(l *Loader) {
		l.cfg = cfg
	}
}

// WithLogger sets the logger. By default we log to a child of the log15
// root logger.
func WithLogger(logger log.Logger) Option {
	return func(l *Loader) {
		l.log = logger
	}
}

// NewLoader returns a loader with the given options applied
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		fetch:      OSFetcher(),
		decompress: stdDecompressor{},
		cfg:        DefaultConfig(),
		log:        log.New("pkg", "tmx"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads & parses the document `name`, along with any external
// tilesets it references.
func (l *Loader) Load(name string) (*Document, error) {
	return l.load(cleanPath(name), nil)
}

// LoadMap loads a document that must be a <map>
func (l *Loader) LoadMap(name string) (*Map, error) {
	doc, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	if doc.Map == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotMap, name)
	}
	return doc.Map, nil
}

// LoadTileSet loads a document that must be a <tileset>
func (l *Loader) LoadTileSet(name string) (*TileSet, error) {
	doc, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	if doc.TileSet == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotTileSet, name)
	}
	return doc.TileSet, nil
}

// Decode parses a document from `r`. External tilesets are read relative
// to the directory of `name`, which may be "".
func (l *Loader) Decode(r io.Reader, name string) (*Document, error) {
	return l.Parse(NewXMLSource(r), name)
}

// Parse builds a document from the events of `src`. External tilesets are
// read relative to the directory of `name`, which may be "".
func (l *Loader) Parse(src EventSource, name string) (*Document, error) {
	return newParser(l, cleanPath(name), nil).run(src)
}

// load reads document `name`, which is being loaded on behalf of the
// documents in `chain`.
func (l *Loader) load(name string, chain []string) (*Document, error) {
	data, err := l.fetch.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileRead, name, err)
	}
	return newParser(l, name, chain).run(NewXMLSource(bytes.NewReader(data)))
}

// Decode an input TMX map XML. External tilesets are read relative to the
// working directory.
func Decode(r io.Reader) (*Map, error) {
	doc, err := NewLoader().Decode(r, "")
	if err != nil {
		return nil, err
	}
	if doc.Map == nil {
		return nil, ErrNotMap
	}
	return doc.Map, nil
}

// Open reads a TMX map from disk
func Open(fname string) (*Map, error) {
	return NewLoader().LoadMap(fname)
}
