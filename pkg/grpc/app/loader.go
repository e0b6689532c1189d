package app

import (
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// FileLoader reads the file referenced by u.
type FileLoader func(u *url.URL) ([]byte, error)

var (
	loadersMu sync.RWMutex
	loaders   = map[string]FileLoader{
		"":     loadLocalFile,
		"file": loadLocalFile,
	}
)

// RegisterFileLoader makes loader available for URLs with scheme. It panics if
// the scheme is already registered.
func RegisterFileLoader(scheme string, loader FileLoader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()

	if _, exists := loaders[scheme]; exists {
		panic(fmt.Sprintf("file loader already registered for scheme '%s'", scheme))
	}
	loaders[scheme] = loader
}

// LoadFile reads fileURL with the loader registered for its scheme. Plain
// paths are read from the local filesystem.
func LoadFile(fileURL string) ([]byte, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file url %s", fileURL)
	}

	loadersMu.RLock()
	loader, exists := loaders[u.Scheme]
	loadersMu.RUnlock()

	if !exists {
		return nil, errors.Errorf("no file loader for scheme '%s'", u.Scheme)
	}
	return loader(u)
}

func loadLocalFile(u *url.URL) ([]byte, error) {
	path := u.Path
	if len(u.Opaque) > 0 {
		path = u.Opaque
	}
	return os.ReadFile(path)
}
