package cache

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Images caches decoded bitmaps keyed by URL or content key. Cost is the
// approximate decoded size in bytes, so the cache bounds real memory use
// rather than picture count.
type Images struct {
	c *Cache[string, image.Image]
}

// NewImages returns an image cache holding at most maxBytes of decoded
// pixel data.
func NewImages(maxBytes int64) *Images {
	return &Images{c: New[string, image.Image](0, maxBytes)}
}

func (i *Images) Get(key string) (image.Image, bool) {
	return i.c.Get(key)
}

func (i *Images) Set(key string, img image.Image) {
	i.c.SetCost(key, img, ImageCost(img))
}

func (i *Images) Remove(key string) { i.c.Remove(key) }

func (i *Images) Clear() { i.c.Clear() }

// ImageCost estimates the decoded size of img in bytes: row bytes × height,
// assuming 4 bytes per pixel.
func ImageCost(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * 4 * int64(b.Dy())
}

// Downsample decodes raw image bytes and scales the result down so that its
// longest side does not exceed maxDim pixels, preserving aspect ratio.
// Images already within the bound are returned as decoded. The function has
// no cache side effects.
func Downsample(data []byte, maxDim int) (image.Image, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("max dimension must be positive, got %d", maxDim)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if longest <= maxDim {
		return src, nil
	}

	scale := float64(maxDim) / float64(longest)
	dw := max(int(float64(w)*scale), 1)
	dh := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst, nil
}
