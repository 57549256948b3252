// Package assets fetches model files and decodes them into engine geometry.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Faultbox/archviz/internal/engine"
)

// DefaultMaxBytes caps the size of a fetched model.
const DefaultMaxBytes = 256 << 20

// ErrNoPrimitives is wrapped by ModelLoadError when a model decodes to
// nothing renderable.
var ErrNoPrimitives = errors.New("assets: model has no renderable primitives")

// ModelLoadError reports a model that could not be loaded.
type ModelLoadError struct {
	Source string
	Err    error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("loading model %s: %v", e.Source, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// Source identifies model content. Exactly one of Data, Path or URL is set.
type Source struct {
	Name string
	Data []byte
	Path string
	URL  string
}

// FromBytes wraps in-memory glTF or GLB content.
func FromBytes(name string, data []byte) Source {
	return Source{Name: name, Data: data}
}

// FromFile refers to a glTF or GLB file on disk.
func FromFile(path string) Source {
	return Source{Name: path, Path: path}
}

// FromURL refers to a glTF or GLB document served over HTTP.
func FromURL(url string) Source {
	return Source{Name: url, URL: url}
}

// SourceFor interprets a command-line or trace reference as an HTTP(S) URL
// or, failing that, a file path.
func SourceFor(ref string) Source {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return FromURL(ref)
	}
	return FromFile(ref)
}

func (s Source) String() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Path != "":
		return s.Path
	case s.URL != "":
		return s.URL
	default:
		return "<bytes>"
	}
}

// key identifies fetchable sources in the cache. In-memory data has none.
func (s Source) key() string {
	switch {
	case s.Path != "":
		return "file:" + s.Path
	case s.URL != "":
		return s.URL
	default:
		return ""
	}
}

// Loader fetches and decodes models. Fetched bytes are cached by source so
// reloading the same model skips I/O.
type Loader struct {
	client   *http.Client
	cache    *Cache
	maxBytes int64
}

// NewLoader returns a loader using client for URL sources. A nil client
// uses http.DefaultClient.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, cache: NewCache(), maxBytes: DefaultMaxBytes}
}

// Cache returns the loader's fetch cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load fetches src and decodes it. Every failure is a *ModelLoadError.
func (l *Loader) Load(ctx context.Context, src Source) ([]engine.Geometry, error) {
	data, err := l.fetch(ctx, src)
	if err != nil {
		return nil, &ModelLoadError{Source: src.String(), Err: err}
	}

	// Relative buffer URIs of a file resolve next to it.
	var fsys fs.FS
	if src.Path != "" {
		fsys = os.DirFS(filepath.Dir(src.Path))
	}
	meshes, err := Decode(data, fsys)
	if err != nil {
		return nil, &ModelLoadError{Source: src.String(), Err: err}
	}
	return meshes, nil
}

func (l *Loader) fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.Data != nil {
		return src.Data, nil
	}

	key := src.key()
	if key == "" {
		return nil, errors.New("empty source")
	}
	if data, ok := l.cache.Get(key); ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	if src.Path != "" {
		data, err = os.ReadFile(src.Path)
	} else {
		data, err = l.download(ctx, src.URL)
	}
	if err != nil {
		return nil, err
	}

	l.cache.Set(key, data)
	return data, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("model exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}
