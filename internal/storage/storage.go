package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// AferoStore keeps assets on an afero filesystem and serves them under a
// public base URL. With afero.NewOsFs it backs local development; tests use
// afero.NewMemMapFs.
type AferoStore struct {
	fs      afero.Fs
	baseURL *url.URL
}

var _ Store = (*AferoStore)(nil)

// NewAferoStore creates a store rooted at fs whose files are published under publicBaseURL.
func NewAferoStore(fs afero.Fs, publicBaseURL string) (*AferoStore, error) {
	u, err := url.Parse(strings.TrimRight(publicBaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid public base URL %q: expected absolute URL like http://localhost:5000/uploads", publicBaseURL)
	}
	return &AferoStore{fs: fs, baseURL: u}, nil
}

// NewLocalStore stores assets on disk under dir.
func NewLocalStore(dir, publicBaseURL string) (*AferoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset directory %s: %w", dir, err)
	}
	return NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), dir), publicBaseURL)
}

// Save writes the content of the reader to key.
func (s *AferoStore) Save(ctx context.Context, key string, reader io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	name := fsPath(key)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// Delete removes a file from the filesystem.
func (s *AferoStore) Delete(ctx context.Context, key string) error {
	err := s.fs.Remove(fsPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Get opens a stored file for reading.
func (s *AferoStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.fs.OpenFile(fsPath(key), os.O_RDONLY, 0)
}

// PublicURL joins the base URL and key.
func (s *AferoStore) PublicURL(key string) string {
	u := *s.baseURL
	u.Path = path.Join(u.Path, key)
	return u.String()
}

// KeyFromURL strips the base URL from rawURL.
func (s *AferoStore) KeyFromURL(rawURL string) (string, bool) {
	if !strings.Contains(rawURL, s.baseURL.Host) {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != s.baseURL.Host {
		return "", false
	}
	prefix := strings.TrimRight(s.baseURL.Path, "/") + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, prefix)
	return key, key != ""
}

// Handler serves the stored files over HTTP.
func (s *AferoStore) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
}

// BasePath is the URL path the files are published under.
func (s *AferoStore) BasePath() string {
	if s.baseURL.Path == "" {
		return "/"
	}
	return s.baseURL.Path
}

// fsPath roots key so the same file is reached from Save and from Handler.
func fsPath(key string) string {
	return "/" + strings.TrimLeft(path.Clean("/"+key), "/")
}
