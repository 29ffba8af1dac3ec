package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageFetcher retrieves remote image bytes for analyze-by-URL requests.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPImageFetcher implements ImageFetcher over a pooled HTTP client.
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher. maxBytes caps the
// downloaded body so a hostile URL cannot exhaust memory.
func NewHTTPImageFetcher(maxBytes int64) *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// FetchImage downloads an image, retrying up to three times on transient
// failures. 4xx responses fail immediately.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/bmp, */*")
	req.Header.Set("User-Agent", "go-outfit-advisor/1.0")

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			if int64(len(data)) > h.maxBytes {
				return nil, fmt.Errorf("image exceeds %d byte limit", h.maxBytes)
			}
			return data, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("unexpected status code %d", resp.StatusCode)

		// Client errors will not improve on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image: %w", lastErr)
}
