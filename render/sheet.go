package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/voidshard/tmx"
)

type decoder func(io.Reader) (image.Image, error)

// decoders by file extension. tga has no magic number (it registers with
// image.Decode as matching anything) so we never sniff formats.
var decoders = map[string]decoder{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tga":  tga.Decode,
}

// decodeImage decodes `data` by the extension of `fpath`. Unknown extensions
// try each decoder in turn, tga last.
func decodeImage(fpath string, data []byte) (image.Image, error) {
	if dec, ok := decoders[strings.ToLower(path.Ext(fpath))]; ok {
		return dec(bytes.NewReader(data))
	}

	var lastErr error
	for _, dec := range []decoder{png.Decode, jpeg.Decode, gif.Decode, bmp.Decode, tga.Decode} {
		im, err := dec(bytes.NewReader(data))
		if err == nil {
			return im, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// tileKey identifies a tile image in our cache
type tileKey struct {
	ts *tmx.TileSet
	id uint32
}

// loadImage reads & decodes an image file, applying the <image> trans color
// if one is set.
func (r *Renderer) loadImage(dir string, img *tmx.Image) (image.Image, error) {
	if img == nil || img.Source == "" {
		return nil, fmt.Errorf("render: image has no source")
	}

	fpath := path.Join(dir, img.Source)
	if cached, ok := r.images[fpath]; ok {
		return cached, nil
	}

	data, err := fs.ReadFile(r.fsys, fpath)
	if err != nil {
		return nil, fmt.Errorf("render: read %s: %w", fpath, err)
	}

	decoded, err := decodeImage(fpath, data)
	if err != nil {
		return nil, fmt.Errorf("render: decode %s: %w", fpath, err)
	}

	if img.Trans != "" {
		key, err := parseHex(img.Trans)
		if err != nil {
			return nil, fmt.Errorf("render: %s: bad trans color: %w", fpath, err)
		}
		decoded = colorKey(decoded, key)
	}

	r.images[fpath] = decoded
	return decoded, nil
}

// tileImage returns the image of tile `t` of tileset `ts`. Tiles with their
// own image (image collection tilesets) use it, others are cut out of the
// tileset image.
func (r *Renderer) tileImage(dir string, ts *tmx.TileSet, t *tmx.Tile) (image.Image, error) {
	key := tileKey{ts: ts, id: t.ID}
	if cached, ok := r.tiles[key]; ok {
		return cached, nil
	}

	if ts.Source != "" {
		// images of an external tileset are relative to the tileset file
		dir = path.Dir(path.Join(dir, ts.Source))
	}

	var (
		out image.Image
		err error
	)
	if t.Image != nil {
		out, err = r.loadImage(dir, t.Image)
	} else {
		out, err = r.cutTile(dir, ts, t.ID)
	}
	if err != nil {
		return nil, err
	}

	r.tiles[key] = out
	return out, nil
}

// cutTile copies tile `id` out of the tileset image, minding margin & spacing
func (r *Renderer) cutTile(dir string, ts *tmx.TileSet, id uint32) (image.Image, error) {
	sheet, err := r.loadImage(dir, ts.Image)
	if err != nil {
		return nil, err
	}

	tw, th := ts.TileWidth, ts.TileHeight
	if tw <= 0 || th <= 0 {
		return nil, fmt.Errorf("render: tileset %q has no tile size", ts.Name)
	}

	bnds := sheet.Bounds()
	columns := (bnds.Dx() - 2*ts.Margin + ts.Spacing) / (tw + ts.Spacing)
	if columns < 1 {
		columns = 1
	}

	col := int(id) % columns
	row := int(id) / columns
	spnt := image.Pt(
		bnds.Min.X+ts.Margin+col*(tw+ts.Spacing),
		bnds.Min.Y+ts.Margin+row*(th+ts.Spacing),
	)
	if !spnt.In(bnds) {
		return nil, fmt.Errorf("render: tile %d is outside of tileset %q image", id, ts.Name)
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(dst, dst.Bounds(), sheet, spnt, draw.Src)
	return dst, nil
}

// colorKey returns a copy of `in` with all pixels of color `key` transparent
func colorKey(in image.Image, key color.NRGBA) image.Image {
	bnds := in.Bounds()
	out := image.NewNRGBA(bnds)
	for y := bnds.Min.Y; y < bnds.Max.Y; y++ {
		for x := bnds.Min.X; x < bnds.Max.X; x++ {
			c := color.NRGBAModel.Convert(in.At(x, y)).(color.NRGBA)
			if c.R == key.R && c.G == key.G && c.B == key.B {
				c = color.NRGBA{}
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// parseHex reads "rrggbb" or "#rrggbb" (as used by trans) and "#aarrggbb"
// (as used by backgroundcolor)
func parseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, err
	}

	switch len(s) {
	case 6:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		return color.NRGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return color.NRGBA{}, fmt.Errorf("expected 6 or 8 hex digits, got %q", s)
}
