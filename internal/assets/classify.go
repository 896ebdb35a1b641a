package assets

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfrund/folio/internal/domain"
)

var imageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "webp": true}

var documentExtensions = map[string]bool{"pdf": true, "doc": true, "docx": true}

const (
	mimeMSWord = "application/msword"
	mimeDOCX   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedContentType reports whether an upload's declared content type is
// accepted at the request boundary: any image, PDF or Word document.
func AllowedContentType(contentType string) bool {
	ct := baseMediaType(contentType)
	return strings.HasPrefix(ct, "image/") ||
		ct == "application/pdf" ||
		ct == mimeMSWord ||
		ct == mimeDOCX
}

// Classify decides the category of an upload. A known extension or a
// matching declared content type is enough: every image/* type is an image,
// and PDF or Word types are documents whatever the file is called. Uploads
// that declare nothing useful are sniffed.
func Classify(filename, contentType string, data []byte) domain.AssetKind {
	if kind, ok := kindForExtension(extension(filename)); ok {
		return kind
	}
	if kind, ok := kindForMediaType(contentType); ok {
		return kind
	}
	if undeclared(contentType) && len(data) > 0 {
		if kind, ok := kindForMediaType(mimetype.Detect(data).String()); ok {
			return kind
		}
	}
	return domain.AssetUnsupported
}

// ExtensionFor returns the normalized extension an upload is stored under.
func ExtensionFor(filename, contentType string, data []byte) string {
	if ext := extension(filename); imageExtensions[ext] || documentExtensions[ext] {
		if ext == "jpeg" {
			return "jpg"
		}
		return ext
	}
	candidates := []string{contentType}
	if undeclared(contentType) {
		candidates = append(candidates, detected(data))
	}
	for _, ct := range candidates {
		switch baseMediaType(ct) {
		case "image/jpeg":
			return "jpg"
		case "image/png":
			return "png"
		case "image/webp":
			return "webp"
		case "image/gif":
			return "gif"
		case "image/bmp", "image/x-ms-bmp":
			return "bmp"
		case "image/tiff":
			return "tiff"
		case "application/pdf":
			return "pdf"
		case mimeMSWord:
			return "doc"
		case mimeDOCX:
			return "docx"
		}
	}
	return ""
}

// ContentTypeFor maps a stored extension back to its media type.
func ContentTypeFor(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "pdf":
		return "application/pdf"
	case "doc":
		return mimeMSWord
	case "docx":
		return mimeDOCX
	default:
		return "application/octet-stream"
	}
}

func kindForExtension(ext string) (domain.AssetKind, bool) {
	switch {
	case imageExtensions[ext]:
		return domain.AssetImage, true
	case documentExtensions[ext]:
		return domain.AssetDocument, true
	default:
		return "", false
	}
}

func kindForMediaType(contentType string) (domain.AssetKind, bool) {
	ct := baseMediaType(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return domain.AssetImage, true
	case ct == "application/pdf", ct == mimeMSWord, ct == mimeDOCX:
		return domain.AssetDocument, true
	default:
		return "", false
	}
}

// undeclared reports whether a client sent no usable content type.
func undeclared(contentType string) bool {
	ct := baseMediaType(contentType)
	return ct == "" || ct == "application/octet-stream"
}

func detected(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return mimetype.Detect(data).String()
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), "."))
}

func baseMediaType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
