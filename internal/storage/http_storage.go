package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxImageBytes caps downloaded images.
const DefaultMaxImageBytes = 50 << 20

// ErrImageTooLarge is returned when a download exceeds the size cap.
var ErrImageTooLarge = errors.New("image exceeds size limit")

// ImageFetcher downloads encoded image bytes from a remote source
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	attempts int
	backoff  time.Duration
}

// HTTPOption customises an HTTPImageFetcher
type HTTPOption func(*HTTPImageFetcher)

// WithMaxBytes sets the download size cap
func WithMaxBytes(n int64) HTTPOption {
	return func(h *HTTPImageFetcher) { h.maxBytes = n }
}

// WithBackoff sets the base delay between retries. Attempt n waits n*d.
func WithBackoff(d time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) { h.backoff = d }
}

// WithTimeout sets the overall client timeout
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) { h.client.Timeout = d }
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts ...HTTPOption) *HTTPImageFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// Connection pooling sized for occasional single-image downloads
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
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
		maxBytes: DefaultMaxImageBytes,
		attempts: 3,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchImage downloads ref. Network errors and 5xx responses are retried;
// 4xx responses are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error
	tries := 0

	for attempt := 0; attempt < h.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		tries++
		data, retry, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempt(s): %w", tries, lastErr)
}

func (h *HTTPImageFetcher) fetchOnce(ctx context.Context, imageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
	req.Header.Set("User-Agent", "blur-culler/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.maxBytes {
		return nil, false, ErrImageTooLarge
	}
	data, err := readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, !errors.Is(err, ErrImageTooLarge), err
	}
	return data, false, nil
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrImageTooLarge
	}
	return data, nil
}
