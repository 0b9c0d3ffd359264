/* this file is the state machine that builds a Document from tag events.

Each state reacts to open, close and text events. Unknown elements anywhere
are skipped (with everything under them) by the skip state, which counts
nested elements until it's back where it started.

Sub-grammars used from more than one place (properties, animations, a tile's
object group, objects, tilesets) remember the state to go back to in a
single saved value rather than a stack; none of them can appear inside
another instance of themselves.
*/
package tmx

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	log "gopkg.in/inconshreveable/log15.v2"
)

type state int

const (
	stateStart state = iota
	stateMap
	stateTileSet
	stateTile
	stateTileLayer
	stateObjectLayer
	stateObject
	stateImageLayer
	stateTerrainTypes
	stateTerrain
	stateCollectProps
	stateCollectAnimation
	stateCollectObjects
	stateDataXML
	stateDataCSV
	stateDataB64Raw
	stateDataB64Gzip
	stateDataB64Zlib
	stateSkip
	stateCount
)

// handler is how a state reacts to each kind of event
type handler struct {
	open  func(p *parser, tag Tag) error
	close func(p *parser) error
	text  func(p *parser, text string)
}

var handlers [stateCount]handler

func init() {
	handlers = [stateCount]handler{
		stateStart:            {open: (*parser).openStart},
		stateMap:              {open: (*parser).openMap},
		stateTileSet:          {open: (*parser).openTileSet, close: returnTo(func(p *parser) state { return p.tileSetReturn })},
		stateTile:             {open: (*parser).openTile, close: returnTo(func(*parser) state { return stateTileSet })},
		stateTileLayer:        {open: (*parser).openTileLayer, close: returnTo(func(*parser) state { return stateMap })},
		stateObjectLayer:      {open: (*parser).openObjectLayer, close: returnTo(func(*parser) state { return stateMap })},
		stateObject:           {open: (*parser).openObject, close: returnTo(func(p *parser) state { return p.objectReturn })},
		stateImageLayer:       {open: (*parser).openImageLayer, close: returnTo(func(*parser) state { return stateMap })},
		stateTerrainTypes:     {open: (*parser).openTerrainTypes, close: returnTo(func(*parser) state { return stateTileSet })},
		stateTerrain:          {open: (*parser).openTerrain, close: returnTo(func(*parser) state { return stateTerrainTypes })},
		stateCollectProps:     {open: (*parser).openProperty, close: returnTo(func(p *parser) state { return p.propsReturn })},
		stateCollectAnimation: {open: (*parser).openFrame, close: returnTo(func(p *parser) state { return p.animReturn })},
		stateCollectObjects:   {open: (*parser).openGroupObject, close: returnTo(func(p *parser) state { return p.objectsReturn })},
		stateDataXML:          {open: (*parser).openDataTile, close: returnTo(func(*parser) state { return stateTileLayer })},
		stateDataCSV:          {open: skipAll, close: (*parser).closeDataCSV, text: (*parser).collectText},
		stateDataB64Raw:       {open: skipAll, close: (*parser).closeDataRaw, text: (*parser).collectText},
		stateDataB64Gzip:      {open: skipAll, close: closeDataCompressed(CompressionGzip), text: (*parser).collectText},
		stateDataB64Zlib:      {open: skipAll, close: closeDataCompressed(CompressionZlib), text: (*parser).collectText},
		stateSkip:             {open: (*parser).openSkip, close: (*parser).closeSkip},
	}
}

func returnTo(next func(p *parser) state) func(p *parser) error {
	return func(p *parser) error {
		p.state = next(p)
		return nil
	}
}

func skipAll(p *parser, _ Tag) error {
	p.skip()
	return nil
}

// rawLayer holds the (not yet resolved) global ids of a tile layer
type rawLayer struct {
	layer  *TileLayer
	gids   []uint32
	cursor int
}

// save stores `raw` at the cursor & moves the cursor on
func (r *rawLayer) save(raw uint32) error {
	if r.cursor >= len(r.gids) {
		return fmt.Errorf("%w: layer %q has more than %d tiles", ErrDataSizeMismatch, r.layer.Name, len(r.gids))
	}
	r.put(r.cursor, raw)
	r.cursor++
	return nil
}

// put splits the flip flags out of `raw` into cell i
func (r *rawLayer) put(i int, raw uint32) {
	gid, flips := DecodeGID(raw)
	r.layer.HFlip[i] = flips.Horizontal
	r.layer.VFlip[i] = flips.Vertical
	r.layer.DFlip[i] = flips.Diagonal
	r.gids[i] = gid
}

// externalTileSet is a placeholder tileset & the tileset its source
// document holds, once that is loaded.
type externalTileSet struct {
	placeholder *TileSet
	loaded      *TileSet
}

// parser is everything a single parse of a single document mutates
type parser struct {
	loader *Loader
	name   string   // path of this document
	chain  []string // paths of documents loading this one, for cycle detection
	log    log.Logger
	tasks  *barrier

	state state

	skipReturn state
	skipDepth  int

	props         *Properties
	propsReturn   state
	frames        *[]Frame
	animReturn    state
	objects       *[]*Object
	objectsReturn state
	objectReturn  state
	tileSetReturn state

	doc         Document
	m           *Map
	tileSet     *TileSet
	tile        *Tile
	tileLayer   *TileLayer
	objectLayer *ObjectLayer
	imageLayer  *ImageLayer
	object      *Object
	terrain     *Terrain

	raw       *rawLayer
	raws      []*rawLayer
	data      strings.Builder
	externals []*externalTileSet
}

func newParser(l *Loader, name string, chain []string) *parser {
	return &parser{
		loader: l,
		name:   name,
		chain:  chain,
		log:    l.log.New("file", name),
		tasks:  newBarrier(l.cfg.MaxTasks),
		state:  stateStart,
	}
}

// run drives the state machine over all events of `src`, waits for
// spawned tasks then resolves the document.
func (p *parser) run(src EventSource) (*Document, error) {
	for {
		if err := p.tasks.Err(); err != nil {
			return nil, err
		}

		ev, err := src.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, p.name, err)
		}

		if err := p.feed(ev); err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}

	if err := p.tasks.Wait(); err != nil {
		return nil, err
	}

	if p.doc.Map == nil && p.doc.TileSet == nil {
		return nil, fmt.Errorf("%w: %s: no <map> or <tileset> element", ErrSyntax, p.name)
	}

	for _, ext := range p.externals {
		ext.placeholder.MergeFrom(ext.loaded)
	}
	if p.m != nil {
		resolve(p.m, p.raws, p.loader.cfg, p.log)
	}

	return &p.doc, nil
}

// feed a single event to the current state
func (p *parser) feed(ev Event) error {
	h := handlers[p.state]
	switch ev.Kind {
	case EventOpen:
		if h.open == nil {
			p.skip()
			return nil
		}
		return h.open(p, ev.Tag)
	case EventClose:
		if h.close == nil {
			return nil
		}
		return h.close(p)
	case EventText:
		if h.text != nil {
			h.text(p, ev.Text)
		}
	}
	return nil
}

// skip the element just opened (and everything in it)
func (p *parser) skip() {
	p.skipReturn = p.state
	p.skipDepth = 1
	p.state = stateSkip
}

func (p *parser) openSkip(Tag) error {
	p.skipDepth++
	return nil
}

func (p *parser) closeSkip() error {
	p.skipDepth--
	if p.skipDepth == 0 {
		p.state = p.skipReturn
	}
	return nil
}

func (p *parser) collectProperties(target *Properties) {
	p.props = target
	p.propsReturn = p.state
	p.state = stateCollectProps
}

func (p *parser) collectAnimation(target *[]Frame) {
	p.frames = target
	p.animReturn = p.state
	p.state = stateCollectAnimation
}

func (p *parser) collectObjects(target *[]*Object) {
	p.objects = target
	p.objectsReturn = p.state
	p.state = stateCollectObjects
}

// collectImage reads an <image>. We don't read embedded image <data>.
func (p *parser) collectImage(tag Tag) *Image {
	img := &Image{
		Format: tag.strAttr("FORMAT"),
		Source: tag.strAttr("SOURCE"),
		Trans:  tag.strAttr("TRANS"),
		Width:  tag.intAttr("WIDTH", 0),
		Height: tag.intAttr("HEIGHT", 0),
	}
	p.skip()
	return img
}

// collectTileSet starts a <tileset>. If the tileset lives in another
// document it's left as a placeholder & the document is loaded async.
func (p *parser) collectTileSet(tag Tag, next state) {
	ts := newTileSet()
	ts.FirstGID = tag.gidAttr("FIRSTGID")
	ts.Source = tag.strAttr("SOURCE")
	ts.Name = tag.strAttr("NAME")
	ts.TileWidth = tag.intAttr("TILEWIDTH", 0)
	ts.TileHeight = tag.intAttr("TILEHEIGHT", 0)
	ts.Spacing = tag.intAttr("SPACING", 0)
	ts.Margin = tag.intAttr("MARGIN", 0)

	if ts.Source != "" {
		p.fetchTileSet(ts)
	}

	p.tileSet = ts
	p.tileSetReturn = next
	p.state = stateTileSet
}

// fetchTileSet schedules loading the document of a placeholder tileset.
// The task only writes its own externalTileSet; merging happens once all
// tasks are done.
func (p *parser) fetchTileSet(ts *TileSet) {
	ext := &externalTileSet{placeholder: ts}
	p.externals = append(p.externals, ext)

	target := path.Join(path.Dir(p.name), ts.Source)
	chain := append(append([]string{}, p.chain...), p.name)

	p.log.Debug("loading external tileset", "source", ts.Source, "path", target)
	p.tasks.Go(func() error {
		for _, c := range chain {
			if c == target {
				return fmt.Errorf("%w: %s", ErrCyclicReference, strings.Join(append(chain, target), " -> "))
			}
		}

		doc, err := p.loader.load(target, chain)
		if err != nil {
			return err
		}
		if doc.TileSet == nil {
			return fmt.Errorf("%w: %s", ErrNotTileSet, target)
		}
		ext.loaded = doc.TileSet
		return nil
	})
}

func (p *parser) newObject(tag Tag) *Object {
	return &Object{
		Name:       tag.strAttr("NAME"),
		Type:       tag.strAttr("TYPE"),
		X:          tag.floatAttr("X", 0),
		Y:          tag.floatAttr("Y", 0),
		Width:      tag.floatAttr("WIDTH", 0),
		Height:     tag.floatAttr("HEIGHT", 0),
		Rotation:   tag.floatAttr("ROTATION", 0),
		GID:        tag.gidAttr("GID"),
		Visible:    tag.boolAttr("VISIBLE", true),
		Properties: NewProperties(),
	}
}

// terrainAt returns the terrain at index `s` of the tileset's terrains read
// so far. Empty or unknown indexes are no terrain.
func (p *parser) terrainAt(s string) *Terrain {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 || i >= len(p.tileSet.Terrains) {
		return nil
	}
	return p.tileSet.Terrains[i]
}

func (p *parser) openStart(tag Tag) error {
	switch tag.Name {
	case "MAP":
		p.m = &Map{
			Version:         tag.strAttr("VERSION"),
			Orientation:     tag.strAttr("ORIENTATION"),
			Width:           tag.intAttr("WIDTH", 0),
			Height:          tag.intAttr("HEIGHT", 0),
			TileWidth:       tag.intAttr("TILEWIDTH", 0),
			TileHeight:      tag.intAttr("TILEHEIGHT", 0),
			BackgroundColor: tag.strAttr("BACKGROUNDCOLOR"),
			Layers:          []Layer{},
			Properties:      NewProperties(),
			TileSets:        []*TileSet{},
		}
		if p.m.Width < 0 || p.m.Height < 0 {
			return fmt.Errorf("%w: map size %dx%d", ErrSyntax, p.m.Width, p.m.Height)
		}
		if p.m.Orientation == "" {
			p.m.Orientation = "orthogonal"
		}
		p.doc.Map = p.m
		p.state = stateMap
	case "TILESET":
		p.collectTileSet(tag, stateStart)
		p.doc.TileSet = p.tileSet
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openMap(tag Tag) error {
	switch tag.Name {
	case "PROPERTIES":
		p.collectProperties(p.m.Properties)
	case "TILESET":
		p.collectTileSet(tag, stateMap)
		p.m.TileSets = append(p.m.TileSets, p.tileSet)
	case "LAYER":
		l := newTileLayer(p.m.Width, p.m.Height)
		l.Name = tag.strAttr("NAME")
		l.Opacity = tag.floatAttr("OPACITY", 1)
		l.Visible = tag.boolAttr("VISIBLE", true)
		p.m.Layers = append(p.m.Layers, l)

		p.tileLayer = l
		p.raw = &rawLayer{layer: l, gids: make([]uint32, len(l.Tiles))}
		p.raws = append(p.raws, p.raw)
		p.state = stateTileLayer
	case "OBJECTGROUP":
		l := &ObjectLayer{
			LayerInfo: LayerInfo{
				Name:       tag.strAttr("NAME"),
				Opacity:    tag.floatAttr("OPACITY", 1),
				Visible:    tag.boolAttr("VISIBLE", true),
				Properties: NewProperties(),
			},
			Color:   tag.strAttr("COLOR"),
			Objects: []*Object{},
		}
		p.m.Layers = append(p.m.Layers, l)
		p.objectLayer = l
		p.state = stateObjectLayer
	case "IMAGELAYER":
		l := &ImageLayer{
			LayerInfo: LayerInfo{
				Name:       tag.strAttr("NAME"),
				Opacity:    tag.floatAttr("OPACITY", 1),
				Visible:    tag.boolAttr("VISIBLE", true),
				Properties: NewProperties(),
			},
			X: tag.intAttr("X", 0),
			Y: tag.intAttr("Y", 0),
		}
		p.m.Layers = append(p.m.Layers, l)
		p.imageLayer = l
		p.state = stateImageLayer
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openTileSet(tag Tag) error {
	switch tag.Name {
	case "TILEOFFSET":
		p.tileSet.TileOffset = Offset{X: tag.intAttr("X", 0), Y: tag.intAttr("Y", 0)}
		p.skip()
	case "PROPERTIES":
		p.collectProperties(p.tileSet.Properties)
	case "IMAGE":
		p.tileSet.Image = p.collectImage(tag)
	case "TERRAINTYPES":
		p.state = stateTerrainTypes
	case "TILE":
		t := newTile(tag.gidAttr("ID"))
		if terrain := tag.strAttr("TERRAIN"); terrain != "" {
			for i, idx := range strings.Split(terrain, ",") {
				if i >= 4 {
					break
				}
				t.Terrain = append(t.Terrain, p.terrainAt(idx))
			}
		}
		t.Probability = tag.floatAttr("PROBABILITY", 0)
		p.tileSet.Tiles[t.ID] = t
		p.tile = t
		p.state = stateTile
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openTile(tag Tag) error {
	switch tag.Name {
	case "PROPERTIES":
		p.collectProperties(p.tile.Properties)
	case "IMAGE":
		p.tile.Image = p.collectImage(tag)
	case "ANIMATION":
		p.collectAnimation(&p.tile.Animation)
	case "OBJECTGROUP":
		p.collectObjects(&p.tile.Objects)
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openTerrainTypes(tag Tag) error {
	if tag.Name != "TERRAIN" {
		p.skip()
		return nil
	}
	p.terrain = &Terrain{
		Name:       tag.strAttr("NAME"),
		Tile:       tag.intAttr("TILE", 0),
		Properties: NewProperties(),
	}
	p.tileSet.Terrains = append(p.tileSet.Terrains, p.terrain)
	p.state = stateTerrain
	return nil
}

func (p *parser) openTerrain(tag Tag) error {
	if tag.Name == "PROPERTIES" {
		p.collectProperties(p.terrain.Properties)
		return nil
	}
	p.skip()
	return nil
}

func (p *parser) openProperty(tag Tag) error {
	if tag.Name == "PROPERTY" {
		p.props.set(tag.strAttr("NAME"), tag.strAttr("VALUE"), tag.strAttr("TYPE"))
	}
	p.skip()
	return nil
}

func (p *parser) openFrame(tag Tag) error {
	if tag.Name == "FRAME" {
		*p.frames = append(*p.frames, Frame{
			TileID:   tag.intAttr("TILEID", 0),
			Duration: tag.intAttr("DURATION", 0),
		})
	}
	p.skip()
	return nil
}

// openGroupObject reads the objects of a tile's <objectgroup>
func (p *parser) openGroupObject(tag Tag) error {
	if tag.Name != "OBJECT" {
		p.skip()
		return nil
	}
	p.object = p.newObject(tag)
	*p.objects = append(*p.objects, p.object)
	p.objectReturn = stateCollectObjects
	p.state = stateObject
	return nil
}

func (p *parser) openObjectLayer(tag Tag) error {
	switch tag.Name {
	case "PROPERTIES":
		p.collectProperties(p.objectLayer.Properties)
	case "OBJECT":
		p.object = p.newObject(tag)
		p.objectLayer.Objects = append(p.objectLayer.Objects, p.object)
		p.objectReturn = stateObjectLayer
		p.state = stateObject
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openObject(tag Tag) error {
	switch tag.Name {
	case "PROPERTIES":
		p.collectProperties(p.object.Properties)
	case "ELLIPSE":
		p.object.Ellipse = true
		p.skip()
	case "POLYGON":
		p.object.Polygon = parsePoints(tag.strAttr("POINTS"))
		p.skip()
	case "POLYLINE":
		p.object.Polyline = parsePoints(tag.strAttr("POINTS"))
		p.skip()
	case "IMAGE":
		p.object.Image = p.collectImage(tag)
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openImageLayer(tag Tag) error {
	switch tag.Name {
	case "PROPERTIES":
		p.collectProperties(p.imageLayer.Properties)
	case "IMAGE":
		p.imageLayer.Image = p.collectImage(tag)
	default:
		p.skip()
	}
	return nil
}

func (p *parser) openTileLayer(tag Tag) error {
	switch tag.Name {
	case "PROPERTIES":
		p.collectProperties(p.tileLayer.Properties)
	case "DATA":
		next, err := dataState(tag.strAttr("ENCODING"), tag.strAttr("COMPRESSION"))
		if err != nil {
			return err
		}
		p.data.Reset()
		p.state = next
	default:
		p.skip()
	}
	return nil
}

// dataState picks the state that decodes a <data> element
func dataState(encoding, compression string) (state, error) {
	switch encoding {
	case "":
		return stateDataXML, nil
	case "csv":
		return stateDataCSV, nil
	case "base64":
		switch Compression(compression) {
		case CompressionNone:
			return stateDataB64Raw, nil
		case CompressionGzip:
			return stateDataB64Gzip, nil
		case CompressionZlib:
			return stateDataB64Zlib, nil
		}
		return stateStart, fmt.Errorf("%w: data compression %q", ErrUnsupportedEncoding, compression)
	}
	return stateStart, fmt.Errorf("%w: data encoding %q", ErrUnsupportedEncoding, encoding)
}

func (p *parser) openDataTile(tag Tag) error {
	if tag.Name == "TILE" {
		if err := p.raw.save(tag.gidAttr("GID")); err != nil {
			return err
		}
	}
	p.skip()
	return nil
}

func (p *parser) collectText(text string) {
	p.data.WriteString(text)
}

func (p *parser) closeDataCSV() error {
	gids, err := decodeCSV(p.data.String())
	if err != nil {
		return err
	}
	for _, gid := range gids {
		if err := p.raw.save(gid); err != nil {
			return err
		}
	}
	p.state = stateTileLayer
	return nil
}

func (p *parser) closeDataRaw() error {
	buf, err := decodeBase64(p.data.String())
	if err != nil {
		return err
	}
	gids, err := unpackTileBytes(buf, len(p.raw.gids))
	if err != nil {
		return err
	}
	for i, gid := range gids {
		p.raw.put(i, gid)
	}
	p.state = stateTileLayer
	return nil
}

// closeDataCompressed base64 decodes the payload now & schedules the
// decompression. The task writes into the layer open right now, whatever
// the parser has moved on to by the time it runs.
func closeDataCompressed(kind Compression) func(p *parser) error {
	return func(p *parser) error {
		buf, err := decodeBase64(p.data.String())
		if err != nil {
			return err
		}

		raw := p.raw
		name := p.name
		decompress := p.loader.decompress
		p.log.Debug("scheduling decompression", "layer", raw.layer.Name, "compression", kind, "bytes", len(buf))
		p.tasks.Go(func() error {
			out, err := decompress.Decompress(kind, buf)
			if err != nil {
				return fmt.Errorf("%s: layer %q: %w", name, raw.layer.Name, err)
			}
			gids, err := unpackTileBytes(out, len(raw.gids))
			if err != nil {
				return fmt.Errorf("%s: layer %q: %w", name, raw.layer.Name, err)
			}
			for i, gid := range gids {
				raw.put(i, gid)
			}
			return nil
		})

		p.state = stateTileLayer
		return nil
	}
}
