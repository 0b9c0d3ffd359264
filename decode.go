package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"
)

// Compression of base64 tile data
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZlib Compression = "zlib"
)

// Decompressor inflates compressed tile data. It's called from the
// loader's task goroutines, so it must be safe for concurrent use.
type Decompressor interface {
	Decompress(kind Compression, in []byte) ([]byte, error)
}

// stdDecompressor uses compress/gzip & compress/zlib
type stdDecompressor struct{}

// Decompress implements Decompressor
func (stdDecompressor) Decompress(kind Compression, in []byte) ([]byte, error) {
	var (
		r   io.ReadCloser
		err error
	)

	switch kind {
	case CompressionGzip:
		r, err = gzip.NewReader(bytes.NewReader(in))
	case CompressionZlib:
		r, err = zlib.NewReader(bytes.NewReader(in))
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedEncoding, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompression, kind, err)
	}
	defer r.Close()

	out, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompression, kind, err)
	}
	return out, nil
}

// decodeCSV reads csv encoded tile data. Whitespace (newlines between rows)
// is ignored, as is a trailing comma.
func decodeCSV(text string) ([]uint32, error) {
	cleaner := func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}

	clean := strings.TrimSuffix(strings.Map(cleaner, text), ",")
	if clean == "" {
		return []uint32{}, nil
	}

	str := strings.Split(clean, ",")
	gids := make([]uint32, len(str))
	for i, s := range str {
		d, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad csv tile id %q", ErrSyntax, s)
		}
		gids[i] = uint32(d)
	}
	return gids, nil
}

// decodeBase64 reads the (possibly compressed) bytes of base64 tile data
func decodeBase64(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 tile data: %v", ErrSyntax, err)
	}
	return data, nil
}

// unpackTileBytes reads little endian uint32 ids from `buf`, which must hold
// exactly `cells` of them.
func unpackTileBytes(buf []byte, cells int) ([]uint32, error) {
	expected := cells * 4
	if len(buf) != expected {
		return nil, fmt.Errorf("%w: expected %d bytes of tile data, received %d", ErrDataSizeMismatch, expected, len(buf))
	}

	gids := make([]uint32, cells)
	for i := range gids {
		gids[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return gids, nil
}
