/* this file holds the scene graph produced by the loader.

Field names follow the TMX reference (doc.mapeditor.org/en/stable/reference/tmx-map-format/)
but only the attributes the loader actually consumes are kept.
*/
package tmx

// Document is the result of a parse. Exactly one of Map or TileSet is set,
// depending on the root element.
type Document struct {
	Map     *Map
	TileSet *TileSet
}

// Map is a <map> and everything under it
type Map struct {
	Version         string
	Orientation     string
	Width           int // in tiles
	Height          int // in tiles
	TileWidth       int // in pixels
	TileHeight      int // in pixels
	BackgroundColor string
	Layers          []Layer
	Properties      *Properties
	TileSets        []*TileSet
}

// Offset is a tileset <tileoffset> in pixels
type Offset struct {
	X int
	Y int
}

// TileSet is a <tileset>, either inline in a map or loaded from a .tsx file.
type TileSet struct {
	FirstGID   uint32
	Source     string // set if this was an external tileset
	Name       string
	TileWidth  int
	TileHeight int
	Spacing    int
	Margin     int
	TileOffset Offset
	Properties *Properties
	Image      *Image

	// Tiles by local id. Ids are not necessarily contiguous or starting at 0,
	// tiles only referenced by a layer are added at resolution time.
	Tiles map[uint32]*Tile

	Terrains []*Terrain
}

func newTileSet() *TileSet {
	return &TileSet{
		Properties: NewProperties(),
		Tiles:      map[uint32]*Tile{},
		Terrains:   []*Terrain{},
	}
}

// MergeFrom copies everything the loaded tileset `o` sets into this
// (placeholder) tileset. FirstGID and Source are per-reference and so are
// kept as they were.
func (t *TileSet) MergeFrom(o *TileSet) {
	if o.Name != "" {
		t.Name = o.Name
	}
	if o.TileWidth != 0 {
		t.TileWidth = o.TileWidth
	}
	if o.TileHeight != 0 {
		t.TileHeight = o.TileHeight
	}
	if o.Spacing != 0 {
		t.Spacing = o.Spacing
	}
	if o.Margin != 0 {
		t.Margin = o.Margin
	}
	if o.TileOffset != (Offset{}) {
		t.TileOffset = o.TileOffset
	}
	if o.Properties.Len() > 0 {
		t.Properties = o.Properties
	}
	if o.Image != nil {
		t.Image = o.Image
	}
	if len(o.Tiles) > 0 {
		t.Tiles = o.Tiles
	}
	if len(o.Terrains) > 0 {
		t.Terrains = o.Terrains
	}
}

// Tile returns the tile with the given local id (or nil)
func (t *TileSet) Tile(id uint32) *Tile {
	return t.Tiles[id]
}

// Tile is a single tile of a tileset
type Tile struct {
	ID  uint32 // local id within the tileset
	GID uint32 // set at resolution time, if the tile is used by some layer

	// Terrain of the top-left, top-right, bottom-left, bottom-right corners.
	// A nil entry is a corner without terrain.
	Terrain     []*Terrain
	Probability float64
	Properties  *Properties
	Animation   []Frame
	Objects     []*Object // collision shapes from the tile's <objectgroup>
	Image       *Image
}

func newTile(id uint32) *Tile {
	return &Tile{ID: id, Properties: NewProperties()}
}

// Frame is one <frame> of a tile animation
type Frame struct {
	TileID   int
	Duration int // in milliseconds
}

// Terrain is a <terrain> type of a tileset
type Terrain struct {
	Name       string
	Tile       int // local id of the tile representing this terrain
	Properties *Properties
}

// Image is an <image> file reference
type Image struct {
	Format string
	Source string
	Trans  string
	Width  int
	Height int
}

// Point is a vertex of a polygon or polyline, relative to the object
type Point struct {
	X float64
	Y float64
}

// Object is an <object> of an object layer, or a collision shape of a tile.
type Object struct {
	Name       string
	Type       string
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Rotation   float64 // in degrees, clockwise
	GID        uint32  // 0 unless this is a tile object (flip flags left in place)
	Visible    bool
	Ellipse    bool
	Polygon    []Point
	Polyline   []Point
	Image      *Image
	Properties *Properties
}
