package tmx

import (
	"io/fs"
	"io/ioutil"
	"path"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Fetcher reads whole documents by name. Names are slash separated, external
// tilesets are named relative to the directory of the document referencing
// them.
//
// A Fetcher is called from the loader's task goroutines, so it must be safe
// for concurrent use.
type Fetcher interface {
	ReadFile(name string) ([]byte, error)
}

// FSFetcher reads documents from `fsys` (eg. an embed.FS or os.DirFS)
func FSFetcher(fsys fs.FS) Fetcher {
	return &fsFetcher{fsys: fsys}
}

type fsFetcher struct {
	fsys fs.FS
}

// ReadFile implements Fetcher
func (f *fsFetcher) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(f.fsys, name)
}

// OSFetcher reads documents from the local disk. A leading ~ is expanded to
// the user's home directory.
func OSFetcher() Fetcher {
	return osFetcher{}
}

type osFetcher struct{}

// ReadFile implements Fetcher
func (osFetcher) ReadFile(name string) ([]byte, error) {
	expanded, err := homedir.Expand(filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	return ioutil.ReadFile(expanded)
}

// cleanPath gives us the canonical name of a document, which we use
// both for reading it & for spotting reference cycles.
func cleanPath(name string) string {
	if name == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(name))
}
