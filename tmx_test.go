package tmx

import (
	"github.com/stretchr/testify/assert"

	"bytes"
	"testing"
)

const csvdata = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.2" orientation="orthogonal" width="3" height="2" tilewidth="32" tileheight="32">
 <tileset firstgid="1" name="grass" tilewidth="32" tileheight="32">
  <image source="grass.png" width="64" height="32"/>
 </tileset>
 <layer name="0" width="3" height="2">
  <data encoding="csv">
1,2,0,
2,3221225473,1
</data>
 </layer>
</map>`

const csvReEncoded = `
1,2,0,
2,3221225473,1
`

func TestDecode(t *testing.T) {
	m, err := Decode(bytes.NewBuffer([]byte(csvdata)))

	assert.Nil(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 1, len(m.TileSets))
	assert.Equal(t, 1, len(m.TileLayers()))
	assert.Equal(t, m.Width, 3)
	assert.Equal(t, m.Height, 2)
	assert.Equal(t, m.TileWidth, 32)
	assert.Equal(t, m.TileHeight, 32)
	assert.Equal(t, len(m.TileLayers()[0].Tiles), 6)
}

func TestDecodeNotAMap(t *testing.T) {
	_, err := Decode(bytes.NewBufferString(`<tileset name="a" tilewidth="8" tileheight="8"/>`))

	assert.ErrorIs(t, err, ErrNotMap)
}

func TestEncodeCSV(t *testing.T) {
	m, err := Decode(bytes.NewBuffer([]byte(csvdata)))

	assert.Nil(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, csvReEncoded, string(m.TileLayers()[0].EncodeCSV()))
}

func TestOpen(t *testing.T) {
	m, err := Open("testdata/desert.tmx")

	assert.Nil(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, "1.2", m.Version)
	assert.Equal(t, "orthogonal", m.Orientation)
	assert.Equal(t, 4, m.Width)
	assert.Equal(t, 3, m.Height)
	assert.Equal(t, 16, m.TileWidth)
	assert.Equal(t, 16, m.TileHeight)
	assert.Equal(t, "#202020", m.BackgroundColor)

	title, _ := m.Properties.String("title")
	difficulty, _ := m.Properties.Int("difficulty")
	scale, _ := m.Properties.Float("scale")
	outdoor, _ := m.Properties.Bool("outdoor")
	assert.Equal(t, "Desert", title)
	assert.Equal(t, 3, difficulty)
	assert.Equal(t, 1.5, scale)
	assert.True(t, outdoor)

	assert.Equal(t, 5, len(m.Layers))
	names := []string{}
	for _, l := range m.Layers {
		names = append(names, l.Info().Name)
	}
	assert.Equal(t, []string{"ground", "decor", "paths", "spawns", "sky"}, names)
	assert.Equal(t, 3, len(m.TileLayers()))
	assert.Equal(t, 1, len(m.ObjectLayers()))
	assert.Equal(t, 1, len(m.ImageLayers()))

	ground := m.LayerByName("ground").(*TileLayer)
	assert.Equal(t, "\n1,2147483650,3,4,\n5,6,7,8,\n9,10,11,12\n", string(ground.EncodeCSV()))
}

func TestOpenTileSets(t *testing.T) {
	m, err := Open("testdata/desert.tmx")

	assert.Nil(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, 2, len(m.TileSets))

	desert := m.TileSets[0]
	assert.Equal(t, uint32(1), desert.FirstGID)
	assert.Equal(t, "tilesets/desert.tsx", desert.Source)
	assert.Equal(t, "desert", desert.Name)
	assert.Equal(t, 16, desert.TileWidth)
	assert.Equal(t, 1, desert.Spacing)
	assert.Equal(t, 1, desert.Margin)
	assert.Equal(t, Offset{X: 0, Y: 4}, desert.TileOffset)
	assert.Equal(t, "desert.png", desert.Image.Source)
	assert.Equal(t, 69, desert.Image.Width)
	biome, _ := desert.Properties.String("biome")
	assert.Equal(t, "desert", biome)

	// every gid of the ground layer is used, so all tiles exist by now
	assert.Equal(t, 12, len(desert.Tiles))

	assert.Equal(t, 2, len(desert.Terrains))
	sand, rock := desert.Terrains[0], desert.Terrains[1]
	assert.Equal(t, "sand", sand.Name)
	assert.Equal(t, 3, rock.Tile)
	speed, _ := sand.Properties.Float("speed")
	assert.Equal(t, 0.8, speed)

	assert.Equal(t, []*Terrain{sand, sand, sand, rock}, desert.Tile(0).Terrain)
	assert.Equal(t, []*Terrain{sand, rock, nil, rock}, desert.Tile(3).Terrain)
	assert.Equal(t, 0.5, desert.Tile(3).Probability)
	solid, _ := desert.Tile(3).Properties.Bool("solid")
	assert.True(t, solid)

	assert.Equal(t, 1, len(desert.Tile(5).Objects))
	assert.Equal(t, 12.0, desert.Tile(5).Objects[0].Width)

	items := m.TileSets[1]
	assert.Equal(t, uint32(30), items.FirstGID)
	assert.Equal(t, "", items.Source)
	assert.Equal(t, 2, len(items.Tiles))
	pickup, _ := items.Tile(0).Properties.Bool("pickup")
	assert.True(t, pickup)
	assert.Equal(t, []Frame{{TileID: 0, Duration: 100}, {TileID: 1, Duration: 250}}, items.Tile(1).Animation)
}

func TestOpenTileLayers(t *testing.T) {
	m, err := Open("testdata/desert.tmx")

	assert.Nil(t, err)
	if err != nil {
		return
	}

	desert, items := m.TileSets[0], m.TileSets[1]

	ground := m.LayerByName("ground").(*TileLayer)
	assert.Same(t, desert.Tile(0), ground.TileAt(0, 0))
	assert.Equal(t, uint32(2), ground.TileAt(1, 0).GID)
	assert.Equal(t, Flips{Horizontal: true}, ground.FlipsAt(1, 0))
	assert.Equal(t, uint32(2)|FlippedHorizontally, ground.GIDAt(1, 0))
	assert.Equal(t, uint32(12), ground.TileAt(3, 2).GID)

	decor := m.LayerByName("decor").(*TileLayer)
	assert.Equal(t, 0.5, decor.Opacity)
	z, _ := decor.Properties.Int("z")
	assert.Equal(t, 2, z)
	assert.Nil(t, decor.TileAt(0, 0))
	assert.Same(t, items.Tile(0), decor.TileAt(2, 0))
	assert.Same(t, items.Tile(1), decor.TileAt(0, 1))
	assert.Equal(t, Flips{Vertical: true, Diagonal: true}, decor.FlipsAt(0, 1))
	assert.Same(t, ground.TileAt(0, 0), decor.TileAt(3, 2))

	paths := m.LayerByName("paths").(*TileLayer)
	assert.False(t, paths.Visible)
	assert.Equal(t, uint32(5), paths.TileAt(1, 0).GID)
	assert.Equal(t, Flips{Horizontal: true, Vertical: true}, paths.FlipsAt(2, 2))

	pickup, _ := m.PropertiesAt("decor", 2, 0).Bool("pickup")
	assert.True(t, pickup)
	assert.Nil(t, m.PropertiesAt("decor", 0, 0))
	assert.Nil(t, m.PropertiesAt("nope", 0, 0))
}

func TestOpenObjectAndImageLayers(t *testing.T) {
	m, err := Open("testdata/desert.tmx")

	assert.Nil(t, err)
	if err != nil {
		return
	}

	spawns := m.LayerByName("spawns").(*ObjectLayer)
	assert.Equal(t, KindObject, spawns.Kind())
	assert.Equal(t, "#ff0000", spawns.Color)
	assert.Equal(t, 4, len(spawns.Objects))

	player := spawns.Objects[0]
	assert.Equal(t, "player", player.Name)
	assert.Equal(t, "spawn", player.Type)
	assert.Equal(t, 8.0, player.X)
	assert.Equal(t, 24.0, player.Y)
	assert.True(t, player.Visible)
	team, _ := player.Properties.String("team")
	assert.Equal(t, "red", team)

	zone := spawns.Objects[1]
	assert.True(t, zone.Ellipse)
	assert.Equal(t, 32.0, zone.Width)
	assert.Equal(t, 16.0, zone.Height)

	fence := spawns.Objects[2]
	assert.Equal(t, []Point{{X: 0, Y: 0}, {X: 16, Y: 0}, {X: 16, Y: 16.5}}, fence.Polygon)
	assert.Nil(t, fence.Polyline)

	chest := spawns.Objects[3]
	assert.Equal(t, uint32(30), chest.GID)
	assert.False(t, chest.Visible)

	sky := m.LayerByName("sky").(*ImageLayer)
	assert.Equal(t, KindImage, sky.Kind())
	assert.Equal(t, 4, sky.X)
	assert.Equal(t, 2, sky.Y)
	assert.Equal(t, "sky.png", sky.Image.Source)
	assert.Equal(t, 1.0, sky.Opacity)
}
