package tmx

import (
	"os"
	"testing"

	"github.com/lafriks/go-tiled"
	"github.com/stretchr/testify/assert"
)

// TestAgainstGoTiled loads our fixtures with go-tiled & checks both loaders
// agree on every cell.
func TestAgainstGoTiled(t *testing.T) {
	for _, fname := range []string{"desert.tmx"} {
		ours, err := NewLoader(WithFetcher(FSFetcher(os.DirFS("testdata")))).LoadMap(fname)
		assert.Nil(t, err, fname)

		theirs, err := tiled.LoadFile(fname, tiled.WithFileSystem(os.DirFS("testdata")))
		assert.Nil(t, err, fname)

		if ours == nil || theirs == nil {
			continue
		}

		assert.Equal(t, theirs.Width, ours.Width)
		assert.Equal(t, theirs.Height, ours.Height)
		assert.Equal(t, theirs.TileWidth, ours.TileWidth)
		assert.Equal(t, theirs.TileHeight, ours.TileHeight)
		assert.Equal(t, len(theirs.Tilesets), len(ours.TileSets))
		for i, ts := range theirs.Tilesets {
			assert.Equal(t, ts.FirstGID, ours.TileSets[i].FirstGID)
			assert.Equal(t, ts.Name, ours.TileSets[i].Name)
		}

		assert.Equal(t, len(theirs.Layers), len(ours.TileLayers()))
		for i, layer := range theirs.Layers {
			tl := ours.TileLayers()[i]
			assert.Equal(t, layer.Name, tl.Name)

			for y := 0; y < theirs.Height; y++ {
				for x := 0; x < theirs.Width; x++ {
					cell := layer.Tiles[y*theirs.Width+x]
					tile := tl.TileAt(x, y)

					if cell.IsNil() {
						assert.Nil(t, tile, "%s (%d,%d)", layer.Name, x, y)
						continue
					}
					if !assert.NotNil(t, tile, "%s (%d,%d)", layer.Name, x, y) {
						continue
					}

					assert.Equal(t, cell.Tileset.FirstGID+cell.ID, tile.GID, "%s (%d,%d)", layer.Name, x, y)
					assert.Equal(t, cell.ID, tile.ID)
					assert.Equal(t, Flips{
						Horizontal: cell.HorizontalFlip,
						Vertical:   cell.VerticalFlip,
						Diagonal:   cell.DiagonalFlip,
					}, tl.FlipsAt(x, y), "%s (%d,%d)", layer.Name, x, y)
				}
			}
		}

		assert.Equal(t, len(theirs.ObjectGroups), len(ours.ObjectLayers()))
		for i, group := range theirs.ObjectGroups {
			ol := ours.ObjectLayers()[i]
			assert.Equal(t, len(group.Objects), len(ol.Objects))
			for j, o := range group.Objects {
				assert.Equal(t, o.Name, ol.Objects[j].Name)
				assert.Equal(t, o.X, ol.Objects[j].X)
				assert.Equal(t, o.Y, ol.Objects[j].Y)
			}
		}
	}
}
