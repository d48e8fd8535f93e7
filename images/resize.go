package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"github.com/jrsteele09/academy-admin/internal/config"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Resize scales an inline image so that its longer side fits its bound, keeping the
// aspect ratio and never enlarging, and re-encodes it as JPEG with quality in 0-1.
func Resize(uri string, maxWidth, maxHeight int, quality float64) (string, error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(apperrors.ErrInvalidImage, err.Error())
	}

	b := src.Bounds()
	width, height := fit(b.Dx(), b.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG has no alpha, transparent pixels become white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return "", errors.Wrap(err, "[Resize] encode jpeg")
	}
	return EncodeDataURI("image/jpeg", out.Bytes()), nil
}

// ResizeToBounds applies one of the configured presets.
func ResizeToBounds(uri string, bounds config.ImageBounds) (string, error) {
	return Resize(uri, bounds.MaxWidth, bounds.MaxHeight, bounds.Quality)
}

// fit only looks at the longer side, a landscape image is bounded by maxWidth and a
// portrait or square one by maxHeight.
func fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width > height {
		if maxWidth > 0 && width > maxWidth {
			height = int(math.Floor(float64(height) * float64(maxWidth) / float64(width)))
			width = maxWidth
		}
	} else if maxHeight > 0 && height > maxHeight {
		width = int(math.Floor(float64(width) * float64(maxHeight) / float64(height)))
		height = maxHeight
	}
	return max(width, 1), max(height, 1)
}

func jpegQuality(q float64) int {
	if q <= 0 || q > 1 {
		return jpeg.DefaultQuality
	}
	return max(int(math.Round(q*100)), 1)
}
