package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeBounds(t *testing.T, data []byte) (int, int) {
	t.Helper()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestThumbnail(t *testing.T) {
	svc := NewService()

	tests := []struct {
		name       string
		srcW, srcH int
		maxSize    int
		wantW      int
		wantH      int
	}{
		{"landscape downscaled", 400, 200, 100, 100, 50},
		{"portrait downscaled", 200, 400, 100, 50, 100},
		{"square downscaled", 300, 300, 64, 64, 64},
		{"small image untouched", 40, 30, 100, 40, 30},
		{"exact bound untouched", 100, 100, 100, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb, err := svc.Thumbnail(encodePNG(t, tt.srcW, tt.srcH), tt.maxSize)
			if err != nil {
				t.Fatalf("Thumbnail() error = %v", err)
			}

			gotW, gotH := decodeBounds(t, thumb)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("Thumbnail() bounds = %dx%d, want %dx%d", gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailInvalidData(t *testing.T) {
	svc := NewService()

	if _, err := svc.Thumbnail([]byte("not an image"), 100); err == nil {
		t.Error("Thumbnail() expected error for invalid image data")
	}
}
