/* file adds helper functions to the loaded map structs.
 */
package tmx

import (
	"strconv"
	"strings"
)

// TileSetFor returns the tileset that global id `gid` belongs to, that is the
// tileset with the highest firstgid <= gid (or nil).
// Flip flags on `gid` are ignored.
func (m *Map) TileSetFor(gid uint32) *TileSet {
	gid, _ = DecodeGID(gid)

	var best *TileSet
	for _, ts := range m.TileSets {
		if ts.FirstGID > gid {
			continue
		}
		// on a tie the later tileset wins
		if best == nil || ts.FirstGID >= best.FirstGID {
			best = ts
		}
	}
	return best
}

// LayerByName returns the first layer with the given name (or nil)
func (m *Map) LayerByName(name string) Layer {
	for _, l := range m.Layers {
		if l.Info().Name == name {
			return l
		}
	}
	return nil
}

// TileLayers returns all tile layers, in document order
func (m *Map) TileLayers() []*TileLayer {
	out := []*TileLayer{}
	for _, l := range m.Layers {
		if tl, ok := l.(*TileLayer); ok {
			out = append(out, tl)
		}
	}
	return out
}

// ObjectLayers returns all object layers, in document order
func (m *Map) ObjectLayers() []*ObjectLayer {
	out := []*ObjectLayer{}
	for _, l := range m.Layers {
		if ol, ok := l.(*ObjectLayer); ok {
			out = append(out, ol)
		}
	}
	return out
}

// ImageLayers returns all image layers, in document order
func (m *Map) ImageLayers() []*ImageLayer {
	out := []*ImageLayer{}
	for _, l := range m.Layers {
		if il, ok := l.(*ImageLayer); ok {
			out = append(out, il)
		}
	}
	return out
}

// PropertiesAt returns the properties of the tile at (x, y) on the named
// tile layer, or nil if there is no such layer or the cell is empty.
func (m *Map) PropertiesAt(layer string, x, y int) *Properties {
	tl, ok := m.LayerByName(layer).(*TileLayer)
	if !ok {
		return nil
	}
	t := tl.TileAt(x, y)
	if t == nil {
		return nil
	}
	return t.Properties
}

// index returns the cell index of (x, y) or -1 if it's off the layer
func (l *TileLayer) index(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return -1
	}
	return y*l.Width + x
}

// TileAt returns the tile at (x, y) or nil if the cell is empty
func (l *TileLayer) TileAt(x, y int) *Tile {
	i := l.index(x, y)
	if i < 0 {
		return nil
	}
	return l.Tiles[i]
}

// FlipsAt returns how the tile at (x, y) is flipped
func (l *TileLayer) FlipsAt(x, y int) Flips {
	i := l.index(x, y)
	if i < 0 {
		return Flips{}
	}
	return Flips{Horizontal: l.HFlip[i], Vertical: l.VFlip[i], Diagonal: l.DFlip[i]}
}

// GIDAt returns the global id of the cell at (x, y) with its flip flags,
// as it would be written in a file. Empty cells are 0.
func (l *TileLayer) GIDAt(x, y int) uint32 {
	t := l.TileAt(x, y)
	if t == nil {
		return 0
	}
	return EncodeGID(t.GID, l.FlipsAt(x, y))
}

// EncodeCSV writes the layer back out in TMX csv format, one row per line
func (l *TileLayer) EncodeCSV() []byte {
	values := make([]string, l.Height)

	for row := 0; row < l.Height; row++ {
		csvrow := make([]string, l.Width)
		for col := 0; col < l.Width; col++ {
			csvrow[col] = strconv.FormatUint(uint64(l.GIDAt(col, row)), 10)
		}
		values[row] = strings.Join(csvrow, ",")
	}

	return []byte("\n" + strings.Join(values, ",\n") + "\n")
}
