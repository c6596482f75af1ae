package imageio

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"face-shape-bot/internal/domain/entity"
)

// DefaultMaxSide сторона, до которой уменьшаются большие фотографии
const DefaultMaxSide = 1024

// Decode разбирает JPEG, PNG, GIF, BMP или WebP и поворачивает снимок по EXIF.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", entity.ErrInvalidImage)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: zero size", entity.ErrInvalidImage)
	}
	return img, nil
}

// Bound уменьшает изображение так, чтобы большая сторона не превышала maxSide.
// Маленькие изображения возвращаются как есть.
func Bound(img image.Image, maxSide int) image.Image {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}
