package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig configures a Google Cloud Storage backed store.
type GCSConfig struct {
	Bucket string
	// CDNDomain, when set, replaces storage.googleapis.com in public URLs.
	CDNDomain string
	// EmulatorHost points the client at a fake-gcs-server style emulator.
	EmulatorHost string
}

// GCSStore uploads assets to a single GCS bucket.
type GCSStore struct {
	client *gcs.Client
	cfg    GCSConfig
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore creates the storage client. Credentials come from the
// environment (Application Default Credentials) unless an emulator is used.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(opts, option.WithScopes(gcs.ScopeReadWrite))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	slog.Info("Object storage initialized", "bucket", cfg.Bucket, "cdn_domain", cfg.CDNDomain, "emulator_host", cfg.EmulatorHost)
	return &GCSStore{client: client, cfg: cfg}, nil
}

// Save streams the reader into the bucket object named key.
func (s *GCSStore) Save(ctx context.Context, key string, reader io.Reader, contentType string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.cfg.Bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	n, err := io.Copy(w, reader)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return n, nil
}

// Delete removes the object. A missing object counts as deleted.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.cfg.Bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, s.cfg.Bucket, err)
	}
	return nil
}

// PublicURL returns the CDN or storage.googleapis.com URL for key.
func (s *GCSStore) PublicURL(key string) string {
	return gcsPublicURL(s.cfg, key)
}

// KeyFromURL recovers the object key from a URL built by PublicURL.
func (s *GCSStore) KeyFromURL(rawURL string) (string, bool) {
	return gcsKeyFromURL(s.cfg, rawURL)
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func gcsDomain(cfg GCSConfig) string {
	if cfg.CDNDomain != "" {
		return cfg.CDNDomain
	}
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		if u, err := url.Parse(host); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return "storage.googleapis.com"
}

func gcsPublicURL(cfg GCSConfig, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		return fmt.Sprintf("%s/%s/%s", host, cfg.Bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Bucket, key)
}

func gcsKeyFromURL(cfg GCSConfig, rawURL string) (string, bool) {
	domain := gcsDomain(cfg)
	if !strings.Contains(rawURL, domain) {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	p := strings.TrimLeft(u.Path, "/")
	if cfg.CDNDomain == "" {
		bucketPrefix := cfg.Bucket + "/"
		if !strings.HasPrefix(p, bucketPrefix) {
			return "", false
		}
		p = strings.TrimPrefix(p, bucketPrefix)
	}
	return p, p != ""
}
