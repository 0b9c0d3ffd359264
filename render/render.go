/* Package render draws a loaded orthogonal map into an image, mostly so one
can eyeball what the loader read.

Tile layers are drawn with their flip flags, image layers at their offset &
object layers as outlines (objects with a gid are drawn as their tile).
*/
package render

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"
	"path"

	"github.com/fogleman/gg"

	"github.com/voidshard/tmx"
)

var defaultObjectColor = color.NRGBA{R: 0xa0, G: 0xa0, B: 0xa4, A: 0xff}

// Renderer draws maps, reading images from a filesystem.
// Decoded images are cached so a Renderer shouldn't be shared between
// goroutines.
type Renderer struct {
	fsys   fs.FS
	images map[string]image.Image
	tiles  map[tileKey]image.Image
}

// New returns a renderer reading images from `fsys`.
func New(fsys fs.FS) *Renderer {
	return &Renderer{
		fsys:   fsys,
		images: map[string]image.Image{},
		tiles:  map[tileKey]image.Image{},
	}
}

// Render draws map `m`. Image paths are relative to the directory of
// `mapPath` within our filesystem.
func (r *Renderer) Render(m *tmx.Map, mapPath string) (image.Image, error) {
	if m.Orientation != "" && m.Orientation != "orthogonal" {
		return nil, fmt.Errorf("render: unsupported orientation %q", m.Orientation)
	}

	w, h := m.Width*m.TileWidth, m.Height*m.TileHeight
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: map has no area (%dx%d px)", w, h)
	}

	dir := path.Dir(mapPath)
	dc := gg.NewContext(w, h)

	if m.BackgroundColor != "" {
		bg, err := parseHex(m.BackgroundColor)
		if err != nil {
			return nil, fmt.Errorf("render: bad background color: %w", err)
		}
		dc.SetColor(bg)
		dc.Clear()
	}

	for _, l := range m.Layers {
		if !l.Info().Visible {
			continue
		}

		var err error
		switch v := l.(type) {
		case *tmx.TileLayer:
			err = r.drawTileLayer(dc, m, dir, v)
		case *tmx.ObjectLayer:
			err = r.drawObjectLayer(dc, m, dir, v)
		case *tmx.ImageLayer:
			err = r.drawImageLayer(dc, dir, v)
		}
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Info().Name, err)
		}
	}

	return dc.Image(), nil
}

func (r *Renderer) drawTileLayer(dc *gg.Context, m *tmx.Map, dir string, l *tmx.TileLayer) error {
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			t := l.TileAt(x, y)
			if t == nil {
				continue
			}

			ts := m.TileSetFor(t.GID)
			if ts == nil {
				continue
			}

			img, err := r.tileImage(dir, ts, t)
			if err != nil {
				return err
			}

			// tiles larger than the grid extend up & right from the
			// bottom left of their cell
			b := img.Bounds()
			px := float64(x*m.TileWidth + ts.TileOffset.X)
			py := float64((y+1)*m.TileHeight - b.Dy() + ts.TileOffset.Y)

			drawFlipped(dc, img, px, py, l.FlipsAt(x, y))
		}
	}
	return nil
}

// drawFlipped draws `img` with its top left at (px, py).
// Diagonal flip is applied first, then horizontal & vertical.
func drawFlipped(dc *gg.Context, img image.Image, px, py float64, f tmx.Flips) {
	b := img.Bounds()

	dc.Push()
	defer dc.Pop()

	dc.Translate(px+float64(b.Dx())/2, py+float64(b.Dy())/2)

	sx, sy := 1.0, 1.0
	if f.Horizontal {
		sx = -1
	}
	if f.Vertical {
		sy = -1
	}
	dc.Scale(sx, sy)

	if f.Diagonal {
		// swap x & y axes
		dc.Rotate(math.Pi / 2)
		dc.Scale(1, -1)
	}

	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
}

func (r *Renderer) drawImageLayer(dc *gg.Context, dir string, l *tmx.ImageLayer) error {
	if l.Image == nil {
		return nil
	}
	img, err := r.loadImage(dir, l.Image)
	if err != nil {
		return err
	}
	dc.DrawImage(img, l.X, l.Y)
	return nil
}

func (r *Renderer) drawObjectLayer(dc *gg.Context, m *tmx.Map, dir string, l *tmx.ObjectLayer) error {
	var col color.Color = defaultObjectColor
	if l.Color != "" {
		c, err := parseHex(l.Color)
		if err != nil {
			return fmt.Errorf("bad color: %w", err)
		}
		col = c
	}

	for _, o := range l.Objects {
		if !o.Visible {
			continue
		}

		dc.Push()
		dc.RotateAbout(gg.Radians(o.Rotation), o.X, o.Y)

		err := r.drawObject(dc, m, dir, o, col)

		dc.Pop()
		if err != nil {
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
	}

	return nil
}

func (r *Renderer) drawObject(dc *gg.Context, m *tmx.Map, dir string, o *tmx.Object, col color.Color) error {
	if o.GID != 0 {
		// tile objects are anchored bottom left
		gid, flips := tmx.DecodeGID(o.GID)
		ts := m.TileSetFor(gid)
		if ts == nil {
			return nil
		}
		t := ts.Tile(gid - ts.FirstGID)
		if t == nil {
			return nil
		}
		img, err := r.tileImage(dir, ts, t)
		if err != nil {
			return err
		}
		drawFlipped(dc, img, o.X, o.Y-float64(img.Bounds().Dy()), flips)
		return nil
	}

	dc.SetColor(col)
	dc.SetLineWidth(1)

	switch {
	case o.Ellipse:
		rx, ry := o.Width/2, o.Height/2
		dc.DrawEllipse(o.X+rx, o.Y+ry, rx, ry)
	case len(o.Polygon) > 0:
		tracePath(dc, o.X, o.Y, o.Polygon)
		dc.ClosePath()
	case len(o.Polyline) > 0:
		tracePath(dc, o.X, o.Y, o.Polyline)
	case o.Width > 0 || o.Height > 0:
		dc.DrawRectangle(o.X, o.Y, o.Width, o.Height)
	default:
		// a point
		dc.DrawCircle(o.X, o.Y, 2)
	}

	dc.Stroke()
	return nil
}

// tracePath adds lines through `pnts`, which are relative to (ox, oy)
func tracePath(dc *gg.Context, ox, oy float64, pnts []tmx.Point) {
	for i, p := range pnts {
		if i == 0 {
			dc.MoveTo(ox+p.X, oy+p.Y)
		} else {
			dc.LineTo(ox+p.X, oy+p.Y)
		}
	}
}
