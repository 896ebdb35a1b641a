package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxSide bounds the longest edge of stored images.
const DefaultMaxSide = 1000

// fittedImage is the outcome of fitting an upload into the bounding box.
type fittedImage struct {
	data   []byte
	ext    string
	width  int
	height int
}

// fitImage shrinks data so neither side exceeds maxSide, keeping the aspect
// ratio. Images already inside the box are returned untouched under the
// extension of their decoded format. Only JPEG keeps its format when resized;
// everything else is re-encoded as PNG.
func fitImage(data []byte, ext string, maxSide int) (*fittedImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	ext = formatExtension(format, ext)

	w, h := boundedSize(cfg.Width, cfg.Height, maxSide)
	if w == cfg.Width && h == cfg.Height {
		return &fittedImage{data: data, ext: ext, width: w, height: h}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch ext {
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
		ext = "jpg"
	default:
		err = png.Encode(&buf, dst)
		ext = "png"
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return &fittedImage{data: buf.Bytes(), ext: ext, width: w, height: h}, nil
}

// formatExtension maps an image.Decode format name to a stored extension.
func formatExtension(format, fallback string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "png", "gif", "webp", "bmp", "tiff":
		return format
	default:
		return fallback
	}
}

// boundedSize scales (w, h) down so the longest side is at most maxSide.
func boundedSize(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
