package tmx

// Bitmasks packed into the top of a global tile id.
// see doc.mapeditor.org/en/stable/reference/tmx-map-format/#tile-flipping
const (
	FlippedHorizontally uint32 = 0x80000000
	FlippedVertically   uint32 = 0x40000000
	FlippedDiagonally   uint32 = 0x20000000

	flipMask = FlippedHorizontally | FlippedVertically | FlippedDiagonally
)

// Flips describes how a tile image is mirrored when drawn in a cell.
type Flips struct {
	Horizontal bool
	Vertical   bool
	Diagonal   bool
}

// Any returns if any flip is set
func (f Flips) Any() bool {
	return f.Horizontal || f.Vertical || f.Diagonal
}

// DecodeGID splits a raw id into the bare global id (flags masked off) and
// its flip flags.
func DecodeGID(raw uint32) (uint32, Flips) {
	return raw &^ flipMask, Flips{
		Horizontal: raw&FlippedHorizontally != 0,
		Vertical:   raw&FlippedVertically != 0,
		Diagonal:   raw&FlippedDiagonally != 0,
	}
}

// EncodeGID is the reverse of DecodeGID
func EncodeGID(gid uint32, f Flips) uint32 {
	gid &^= flipMask
	if f.Horizontal {
		gid |= FlippedHorizontally
	}
	if f.Vertical {
		gid |= FlippedVertically
	}
	if f.Diagonal {
		gid |= FlippedDiagonally
	}
	return gid
}
