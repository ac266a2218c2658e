package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension bounds the longest side sent to a provider
const MaxDimension = 2048

// Inspect validates that data is a decodable image and returns it with its
// MIME type and dimensions.
func Inspect(data []byte) (models.Image, error) {
	if len(data) == 0 {
		return models.Image{}, fmt.Errorf("image is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.Image{}, fmt.Errorf("unsupported or corrupt image: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if format == "webp" {
		mimeType = "image/webp"
	}

	return models.Image{
		Data:     data,
		MIMEType: mimeType,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Downscale shrinks img so its longest side is at most maxDim. Smaller
// images are returned unchanged. PNG stays PNG; everything else is
// re-encoded as JPEG.
func Downscale(img models.Image, maxDim int) (models.Image, error) {
	if maxDim <= 0 || (img.Width <= maxDim && img.Height <= maxDim) {
		return img, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img, fmt.Errorf("failed to decode image: %w", err)
	}

	width, height := img.Width, img.Height
	if width >= height {
		height = height * maxDim / width
		width = maxDim
	} else {
		width = width * maxDim / height
		height = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	mimeType := "image/jpeg"
	if img.MIMEType == "image/png" {
		mimeType = "image/png"
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return img, fmt.Errorf("failed to encode image: %w", err)
	}

	return models.Image{Data: buf.Bytes(), MIMEType: mimeType, Width: width, Height: height}, nil
}

// Load inspects data and downscales it for upload
func Load(data []byte) (models.Image, error) {
	img, err := Inspect(data)
	if err != nil {
		return models.Image{}, err
	}
	return Downscale(img, MaxDimension)
}
