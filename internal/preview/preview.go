// Package preview downscales catalog preview images for UI consumption.
package preview

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// Service turns catalog preview images into small JPEG thumbnails.
//
// Catalogs reference full-size product photography in their "preview_image"
// column; the API and TUI only ever need a bounded thumbnail of it.
//
// Example usage:
//
//	svc := preview.NewService()
//	data, _ := client.Get(ctx, row["preview_image"])
//	thumb, err := svc.Thumbnail(data, 256)
type Service struct{}

// NewService creates a Service.
func NewService() *Service {
	return &Service{}
}

// Thumbnail resizes an image to fit within maxSize x maxSize pixels,
// preserving aspect ratio, and re-encodes it as JPEG. Images already inside
// the bound are re-encoded without scaling up.
//
// The Catmull-Rom algorithm is used for high-quality downscaling.
func (s *Service) Thumbnail(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxSize || height > maxSize {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width = maxSize
			height = int(float64(maxSize) / ratio)
		} else {
			height = maxSize
			width = int(float64(maxSize) * ratio)
		}
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
