package tmx

import (
	"errors"
)

// Errors returned by the loader. These are always wrapped with some context
// so check them with errors.Is.
var (
	// ErrSyntax is a malformed document (as reported by the tag source)
	ErrSyntax = errors.New("tmx: syntax error")

	// ErrUnsupportedEncoding is an unknown data encoding or compression
	ErrUnsupportedEncoding = errors.New("tmx: unsupported encoding")

	// ErrDataSizeMismatch is tile data that doesn't fill width*height cells exactly
	ErrDataSizeMismatch = errors.New("tmx: tile data size mismatch")

	// ErrFileRead is an external document that could not be fetched
	ErrFileRead = errors.New("tmx: file read failed")

	// ErrDecompression is a codec failure
	ErrDecompression = errors.New("tmx: decompression failed")

	// ErrCyclicReference is an external tileset that (eventually) references itself
	ErrCyclicReference = errors.New("tmx: cyclic tileset reference")

	// ErrNotMap is returned when a map was asked for but the root element wasn't <map>
	ErrNotMap = errors.New("tmx: document is not a map")

	// ErrNotTileSet is returned when a tileset was asked for but the root element wasn't <tileset>
	ErrNotTileSet = errors.New("tmx: document is not a tileset")
)
