package tmx

// LayerKind tells us which concrete type a Layer is.
type LayerKind string

const (
	KindTile   LayerKind = "tile"
	KindObject LayerKind = "object"
	KindImage  LayerKind = "image"
)

// Layer is one of *TileLayer, *ObjectLayer, *ImageLayer
type Layer interface {
	// Info returns the fields all layers share
	Info() *LayerInfo

	// Kind of layer this is
	Kind() LayerKind
}

// LayerInfo are the fields common to all layers
type LayerInfo struct {
	Name       string
	Opacity    float64
	Visible    bool
	Properties *Properties
}

func (l *LayerInfo) Info() *LayerInfo {
	return l
}

// TileLayer is a <layer>. All slices hold exactly Width*Height cells
// in row major order.
type TileLayer struct {
	LayerInfo
	Width  int
	Height int

	// Tiles holds references into the tilesets of the map, a nil entry
	// is an empty cell.
	Tiles []*Tile
	HFlip []bool
	VFlip []bool
	DFlip []bool
}

func newTileLayer(width, height int) *TileLayer {
	n := width * height
	return &TileLayer{
		LayerInfo: LayerInfo{Opacity: 1, Visible: true, Properties: NewProperties()},
		Width:     width,
		Height:    height,
		Tiles:     make([]*Tile, n),
		HFlip:     make([]bool, n),
		VFlip:     make([]bool, n),
		DFlip:     make([]bool, n),
	}
}

func (l *TileLayer) Kind() LayerKind { return KindTile }

// ObjectLayer is an <objectgroup> of a map
type ObjectLayer struct {
	LayerInfo
	Color   string
	Objects []*Object
}

func (l *ObjectLayer) Kind() LayerKind { return KindObject }

// ImageLayer is an <imagelayer>
type ImageLayer struct {
	LayerInfo
	X     int
	Y     int
	Image *Image
}

func (l *ImageLayer) Kind() LayerKind { return KindImage }
