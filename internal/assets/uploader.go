package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Folder is the key prefix every asset is stored under.
const Folder = "portfolio"

const unsupportedMessage = "Unsupported file type. Only images (jpg, jpeg, png, webp) and documents (pdf, doc, docx) are allowed."

var uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "folio_asset_uploads_total",
	Help: "Asset uploads by content kind and outcome.",
}, []string{"kind", "outcome"})

// Upload is a file buffered from a request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Uploader classifies uploads and writes them to the asset store.
type Uploader struct {
	store   storage.Store
	maxSide int
}

// NewUploader creates an uploader that bounds images to DefaultMaxSide.
func NewUploader(store storage.Store) *Uploader {
	return &Uploader{store: store, maxSide: DefaultMaxSide}
}

// Upload stores the file and describes where it ended up. Unsupported files
// are rejected before the store is contacted.
func (u *Uploader) Upload(ctx context.Context, up Upload) (*domain.AssetRef, error) {
	kind := Classify(up.Filename, up.ContentType, up.Data)
	ext := ExtensionFor(up.Filename, up.ContentType, up.Data)
	if kind == domain.AssetUnsupported || ext == "" {
		uploadsTotal.WithLabelValues(string(domain.AssetUnsupported), "rejected").Inc()
		return nil, domain.Validation(unsupportedMessage, domain.ErrUnsupportedFile)
	}

	ref := &domain.AssetRef{Kind: kind}
	data := up.Data

	switch kind {
	case domain.AssetImage:
		fitted, err := fitImage(up.Data, ext, u.maxSide)
		if err != nil {
			uploadsTotal.WithLabelValues(string(kind), "rejected").Inc()
			return nil, domain.Validation(unsupportedMessage, fmt.Errorf("%w: %w", domain.ErrUnsupportedFile, err))
		}
		data, ext = fitted.data, fitted.ext
		ref.Width, ref.Height = fitted.width, fitted.height
		ref.ID = fmt.Sprintf("%s/%s.%s", Folder, uuid.NewString(), ext)
	case domain.AssetDocument:
		ref.ID = fmt.Sprintf("%s/%s.%s", Folder, documentStem(up.Filename), ext)
	}
	ref.Format = ext

	n, err := u.store.Save(ctx, ref.ID, bytes.NewReader(data), ContentTypeFor(ext))
	if err != nil {
		uploadsTotal.WithLabelValues(string(kind), "failed").Inc()
		slog.ErrorContext(ctx, "Asset upload failed",
			"event", "asset_upload_failed",
			"key", ref.ID,
			"error", err)
		return nil, domain.UploadFailure(err)
	}
	ref.Bytes = n
	ref.URL = u.store.PublicURL(ref.ID)

	uploadsTotal.WithLabelValues(string(kind), "stored").Inc()
	slog.InfoContext(ctx, "Asset stored",
		"event", "asset_stored",
		"key", ref.ID,
		"kind", kind,
		"bytes", n)
	return ref, nil
}

// documentStem keeps the original file name so a resume stays recognizable.
// Anything outside ASCII letters, digits, '-' and '_' is replaced.
func documentStem(filename string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return uuid.NewString()
	}
	return out
}
