package tmx

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestCleanPath(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"a.tmx":            "a.tmx",
		"./maps/../a.tmx":  "a.tmx",
		"maps//town/b.tmx": "maps/town/b.tmx",
		"../up.tsx":        "../up.tsx",
	}

	for in, expect := range cases {
		assert.Equal(t, expect, cleanPath(in), in)
	}
}

func TestFSFetcher(t *testing.T) {
	f := FSFetcher(fstest.MapFS{"a/b.tsx": {Data: []byte("hi")}})

	data, err := f.ReadFile("a/b.tsx")
	assert.Nil(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = f.ReadFile("a/c.tsx")
	assert.True(t, os.IsNotExist(err))
}

func TestOSFetcher(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "a.tsx")
	assert.Nil(t, os.WriteFile(fpath, []byte("hi"), 0644))

	data, err := OSFetcher().ReadFile(filepath.ToSlash(fpath))

	assert.Nil(t, err)
	assert.Equal(t, "hi", string(data))
}
