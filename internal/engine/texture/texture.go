// Package texture decodes images and uploads them as GPU textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"path"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/assets"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/logger"
)

// MaxSize is the largest edge uploaded; bigger images are scaled down.
const MaxSize = 2048

// Decode decodes an image by file extension, falling back to content sniffing.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(path.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	logger.Debug("image decoded", zap.String("name", name), zap.String("format", format))
	return ToRGBA(img), nil
}

// ToRGBA converts img to a zero-origin RGBA image.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) && rgba.Stride == 4*rgba.Bounds().Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Fit scales img down so neither edge exceeds maxSize, keeping the aspect ratio.
func Fit(img *image.RGBA, maxSize int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}
	scale := float64(maxSize) / float64(max(w, h))
	dst := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Load reads name through m, decodes it and uploads it with repeat wrapping.
func Load(dev gpu.Device, m *assets.Manager, name string) (uint32, error) {
	data, err := m.Load(name)
	if err != nil {
		return 0, fmt.Errorf("loading texture: %w", err)
	}
	img, err := Decode(name, data)
	if err != nil {
		return 0, err
	}
	if b := img.Bounds(); b.Dx() > MaxSize || b.Dy() > MaxSize {
		logger.Warn("texture scaled down",
			zap.String("name", name),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()))
		img = Fit(img, MaxSize)
	}
	b := img.Bounds()
	return dev.CreateTexture2D(img.Pix, int32(b.Dx()), int32(b.Dy()), false), nil
}
