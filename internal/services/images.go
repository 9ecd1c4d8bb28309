package services

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"platescout/internal/cache"
	"platescout/internal/logging"
	"platescout/internal/remote"
)

// maxImageDownloadBytes caps how much of a remote image response is read.
const maxImageDownloadBytes = 32 << 20

// ImageLoader fetches, downsamples and caches images. Keys are either full
// http(s) URLs or object-store keys, which are resolved to short-lived
// download URLs first.
//
// Concurrent misses for the same key are not deduplicated: both callers
// fetch and the second Set overwrites the first with an equal value.
type ImageLoader struct {
	cache  *cache.Images
	blobs  remote.Blobs
	client *http.Client
	maxDim int
	log    logging.Logger
}

// Load returns the image for key, from cache when possible. On a miss the
// bytes are fetched, downsampled to the configured maximum dimension and
// cached under the original key.
func (l *ImageLoader) Load(ctx context.Context, key string) (image.Image, error) {
	if img, ok := l.cache.Get(key); ok {
		return img, nil
	}

	url := key
	if !strings.HasPrefix(key, "http://") && !strings.HasPrefix(key, "https://") {
		if l.blobs == nil {
			return nil, fmt.Errorf("no object store configured for key %s", key)
		}
		var err error
		if url, err = l.blobs.DownloadURL(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to resolve image %s: %w", key, err)
		}
	}

	data, err := l.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image %s: %w", key, err)
	}

	img, err := cache.Downsample(data, l.maxDim)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", key, err)
	}

	l.cache.Set(key, img)
	return img, nil
}

func (l *ImageLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageDownloadBytes))
}
