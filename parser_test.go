package tmx

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sliceSource replays a fixed list of events
type sliceSource struct {
	events []Event
}

func (s *sliceSource) Next() (Event, error) {
	if len(s.events) == 0 {
		return Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func open(name string, attrs ...string) Event {
	tag := Tag{Name: name, Attrs: map[string]string{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		tag.Attrs[attrs[i]] = attrs[i+1]
	}
	return Event{Kind: EventOpen, Tag: tag}
}

func closed() Event {
	return Event{Kind: EventClose}
}

func text(s string) Event {
	return Event{Kind: EventText, Text: s}
}

func TestParseEndToEnd(t *testing.T) {
	src := &sliceSource{events: []Event{
		open("MAP", "WIDTH", "2", "HEIGHT", "2", "TILEWIDTH", "16", "TILEHEIGHT", "16"),
		open("TILESET", "FIRSTGID", "1", "NAME", "ts", "TILEWIDTH", "16", "TILEHEIGHT", "16"),
		open("TERRAINTYPES"),
		open("TERRAIN", "NAME", "grass", "TILE", "0"), closed(),
		open("TERRAIN", "NAME", "water", "TILE", "1"), closed(),
		open("TERRAIN", "NAME", "sand", "TILE", "2"), closed(),
		closed(),
		open("TILE", "ID", "0", "TERRAIN", "0,1,,2"), closed(),
		closed(),
		open("LAYER", "NAME", "ground", "WIDTH", "2", "HEIGHT", "2"),
		open("DATA", "ENCODING", "csv"),
		text("1,2,"), text("\n"), text("2,1"),
		closed(),
		closed(),
		closed(),
	}}

	doc, err := NewLoader().Parse(src, "")

	assert.Nil(t, err)
	assert.Nil(t, doc.TileSet)
	m := doc.Map
	assert.Equal(t, "orthogonal", m.Orientation)

	ts := m.TileSets[0]
	assert.Equal(t, 3, len(ts.Terrains))
	assert.Equal(t, []*Terrain{ts.Terrains[0], ts.Terrains[1], nil, ts.Terrains[2]}, ts.Tile(0).Terrain)

	l := m.TileLayers()[0]
	assert.Equal(t, 4, len(l.Tiles))
	assert.Same(t, ts.Tile(0), l.TileAt(0, 0))
	assert.Same(t, ts.Tile(0), l.TileAt(1, 1))
	assert.Same(t, ts.Tile(1), l.TileAt(1, 0))
	assert.Equal(t, uint32(2), ts.Tile(1).GID)
}

func TestParseSplitBase64Text(t *testing.T) {
	src := &sliceSource{events: []Event{
		open("MAP", "WIDTH", "2", "HEIGHT", "2", "TILEWIDTH", "8", "TILEHEIGHT", "8"),
		open("TILESET", "FIRSTGID", "1", "NAME", "ts"), closed(),
		open("LAYER", "NAME", "l"),
		open("DATA", "ENCODING", "base64", "COMPRESSION", "zlib"),
		text(gridZlib[:10]), text(gridZlib[10:]),
		closed(),
		closed(),
		closed(),
	}}

	doc, err := NewLoader().Parse(src, "")

	assert.Nil(t, err)
	assert.Equal(t, uint32(3), doc.Map.TileLayers()[0].GIDAt(1, 1))
}

func TestParseSkipsUnknownElements(t *testing.T) {
	in := `<map width="1" height="1" tilewidth="8" tileheight="8">
 <editorsettings>
  <tile gid="99"/>
  <layer name="not a layer"><data encoding="csv">5</data></layer>
 </editorsettings>
 <tileset firstgid="1" name="ts">
  <wangsets><wangset name="w"><wangtile tileid="0"/></wangset></wangsets>
  <tile id="0"><collision><object name="x"/></collision></tile>
 </tileset>
 <layer name="real">
  <data encoding="csv"><!-- comment -->1<extra>2</extra></data>
 </layer>
 <group name="g"><layer name="nested"/></group>
</map>`

	m, err := Decode(strings.NewReader(in))

	assert.Nil(t, err)
	assert.Equal(t, 1, len(m.Layers))
	assert.Equal(t, "real", m.Layers[0].Info().Name)
	assert.Equal(t, uint32(1), m.TileLayers()[0].GIDAt(0, 0))
	assert.Equal(t, 0, len(m.TileSets[0].Tile(0).Objects))
}

func TestParseStandaloneTileSet(t *testing.T) {
	in := `<?xml version="1.0"?>
<tileset name="things" tilewidth="32" tileheight="16" spacing="2" margin="3">
 <tile id="4">
  <image source="things/barrel.png" width="32" height="16" trans="ff00ff"/>
  <objectgroup>
   <object x="1" y="2" width="3" height="4"><properties><property name="hit" type="bool" value="true"/></properties></object>
   <object x="0" y="0"><polyline points="0,0 5,5"/></object>
  </objectgroup>
 </tile>
</tileset>`

	doc, err := NewLoader().Decode(strings.NewReader(in), "things.tsx")

	assert.Nil(t, err)
	assert.Nil(t, doc.Map)

	ts := doc.TileSet
	assert.Equal(t, "things", ts.Name)
	assert.Equal(t, uint32(0), ts.FirstGID)
	assert.Equal(t, 32, ts.TileWidth)
	assert.Equal(t, 16, ts.TileHeight)
	assert.Equal(t, 2, ts.Spacing)
	assert.Equal(t, 3, ts.Margin)

	barrel := ts.Tile(4)
	assert.Equal(t, &Image{Source: "things/barrel.png", Width: 32, Height: 16, Trans: "ff00ff"}, barrel.Image)
	assert.Equal(t, 2, len(barrel.Objects))
	hit, _ := barrel.Objects[0].Properties.Bool("hit")
	assert.True(t, hit)
	assert.Equal(t, 4.0, barrel.Objects[0].Height)
	assert.Equal(t, []Point{{X: 0, Y: 0}, {X: 5, Y: 5}}, barrel.Objects[1].Polyline)
}

func TestParseTypedProperties(t *testing.T) {
	in := `<map width="1" height="1" tilewidth="8" tileheight="8">
 <properties>
  <property name="s" value="hello"/>
  <property name="i" type="int" value="-12"/>
  <property name="f" type="float" value="2.25"/>
  <property name="b" type="bool" value="false"/>
  <property name="c" type="color" value="#ff00ff00"/>
  <property name="file" type="file" value="x.png"/>
 </properties>
</map>`

	m, err := Decode(strings.NewReader(in))

	assert.Nil(t, err)
	props := m.Properties
	assert.Equal(t, []string{"b", "c", "f", "file", "i", "s"}, props.Keys())
	assert.Equal(t, PropInt, props.Type("i"))
	assert.Equal(t, PropFloat, props.Type("f"))
	assert.Equal(t, PropBool, props.Type("b"))
	assert.Equal(t, PropString, props.Type("c"))

	v, ok := props.Value("i")
	assert.True(t, ok)
	assert.Equal(t, -12, v)
	v, _ = props.Value("f")
	assert.Equal(t, 2.25, v)
	v, _ = props.Value("b")
	assert.Equal(t, false, v)
	v, _ = props.Value("file")
	assert.Equal(t, "x.png", v)
}

func TestParseAttributeDefaults(t *testing.T) {
	in := `<map width="2" height="1" tilewidth="8.0" tileheight="8">
 <layer name="l" opacity="junk"/>
 <objectgroup name="o">
  <object name="p" x="1.5" y="oops" visible="1"/>
 </objectgroup>
 <imagelayer name="i" visible="0"/>
</map>`

	m, err := Decode(strings.NewReader(in))

	assert.Nil(t, err)
	assert.Equal(t, 8, m.TileWidth)

	l := m.TileLayers()[0]
	assert.Equal(t, 1.0, l.Opacity)
	assert.True(t, l.Visible)
	assert.Equal(t, 2, len(l.Tiles))
	assert.Nil(t, l.TileAt(0, 0))

	o := m.ObjectLayers()[0].Objects[0]
	assert.Equal(t, 1.5, o.X)
	assert.Equal(t, 0.0, o.Y)
	assert.True(t, o.Visible)

	assert.False(t, m.ImageLayers()[0].Visible)
	assert.Nil(t, m.ImageLayers()[0].Image)
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"unclosed":   `<map width="1" height="1"><layer>`,
		"mismatched": `<map></layer>`,
		"not tmx":    `<html><body/></html>`,
		"neg width":  `<map width="-1" height="2"><layer name="l"/></map>`,
		"neg height": `<map width="2" height="-3"><layer name="l"/></map>`,
	}

	for name, in := range cases {
		doc, err := NewLoader().Decode(strings.NewReader(in), "x.tmx")

		assert.ErrorIs(t, err, ErrSyntax, name)
		assert.Nil(t, doc, name)
	}
}

func TestParseAnimation(t *testing.T) {
	in := `<tileset name="water">
 <tile id="0">
  <animation>
   <frame tileid="0" duration="100"/>
   <junk/>
   <frame tileid="3" duration="50"/>
  </animation>
  <properties><property name="liquid" type="bool" value="true"/></properties>
 </tile>
</tileset>`

	ts, err := NewLoader(WithFetcher(FSFetcher(nil))).Decode(strings.NewReader(in), "")

	assert.Nil(t, err)
	tile := ts.TileSet.Tile(0)
	assert.Equal(t, []Frame{{TileID: 0, Duration: 100}, {TileID: 3, Duration: 50}}, tile.Animation)
	liquid, _ := tile.Properties.Bool("liquid")
	assert.True(t, liquid)
}
