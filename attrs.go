package tmx

import (
	"strconv"
	"strings"
)

// attribute coercion. Missing or unparsable values give the default, same
// as Tiled does when it reads an attribute it doesn't understand.

func (t Tag) strAttr(key string) string {
	return t.Attrs[key]
}

func (t Tag) intAttr(key string, def int) int {
	v, ok := t.Attrs[key]
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		// eg. "32.0" in hand written files
		f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if ferr != nil {
			return def
		}
		return int(f)
	}
	return i
}

func (t Tag) gidAttr(key string) uint32 {
	v, ok := t.Attrs[key]
	if !ok {
		return 0
	}
	i, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(i)
}

func (t Tag) floatAttr(key string, def float64) float64 {
	v, ok := t.Attrs[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// bool attributes in TMX are written as 0 / 1
func (t Tag) boolAttr(key string, def bool) bool {
	v, ok := t.Attrs[key]
	if !ok {
		return def
	}
	switch strings.TrimSpace(v) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	return def
}

// parsePoints reads a points attribute "x,y x,y ..."
func parsePoints(in string) []Point {
	pts := []Point{}
	for _, pair := range strings.Fields(in) {
		xy := strings.SplitN(pair, ",", 2)
		p := Point{}
		p.X, _ = strconv.ParseFloat(xy[0], 64)
		if len(xy) > 1 {
			p.Y, _ = strconv.ParseFloat(xy[1], 64)
		}
		pts = append(pts, p)
	}
	return pts
}
