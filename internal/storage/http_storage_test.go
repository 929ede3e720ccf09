package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// jpegStub is enough of a JPEG for the fetcher, which does not decode
var jpegStub = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
			expectError:   false,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
			expectError:   false,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "after 1 attempt(s): client error: status code 404",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectError:   true,
			errorContains: "after 2 attempt(s): client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "after 3 attempt(s): server error: status code 503",
		},
		{
			name:          "Mixed 4xx errors - stop on first 4xx",
			responses:     []int{400},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount int32

			// Create test server that returns responses in sequence
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&requestCount, 1)) - 1
				if n >= len(tt.responses) {
					// Shouldn't happen in our tests
					w.WriteHeader(500)
					w.Write([]byte("Unexpected request"))
					return
				}

				statusCode := tt.responses[n]
				if statusCode == 200 {
					w.Header().Set("Content-Type", "image/jpeg")
					w.Write(jpegStub)
					return
				}
				w.WriteHeader(statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", statusCode)))
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(WithBackoff(5 * time.Millisecond))

			data, err := fetcher.FetchImage(context.Background(), server.URL)

			// Verify request count
			if got := int(atomic.LoadInt32(&requestCount)); got != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, got)
			}

			// Verify error expectation
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got: %s", err.Error())
				}
				if !bytes.Equal(data, jpegStub) {
					t.Errorf("Expected body to be returned unchanged, got %v", data)
				}
			}
		})
	}
}

func TestHTTPImageFetcher_NetworkError_Retry(t *testing.T) {
	// Test that network errors are retried
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) < 3 {
			// Simulate network error by closing connection
			hj, ok := w.(http.Hijacker)
			if ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		// Success on third attempt
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(jpegStub)
	}))
	defer server.Close()

	backoff := 20 * time.Millisecond
	fetcher := NewHTTPImageFetcher(WithBackoff(backoff))

	start := time.Now()
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	duration := time.Since(start)

	// Should succeed after retries
	if err != nil {
		t.Errorf("Expected success after retries, got error: %s", err.Error())
	}

	// Should have made 3 requests
	if got := atomic.LoadInt32(&requestCount); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}

	// Linear backoff: 1x + 2x
	if duration < 3*backoff {
		t.Errorf("Expected at least %v due to backoff, took %v", 3*backoff, duration)
	}
}

func TestHTTPImageFetcher_SizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xFF}, 1024))
	}))
	defer server.Close()

	_, err := NewHTTPImageFetcher(WithMaxBytes(100)).FetchImage(context.Background(), server.URL)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("Expected ErrImageTooLarge, got %v", err)
	}

	data, err := NewHTTPImageFetcher(WithMaxBytes(1024)).FetchImage(context.Background(), server.URL)
	if err != nil || len(data) != 1024 {
		t.Errorf("Expected 1024 bytes at the limit, got %d, %v", len(data), err)
	}
}

func TestHTTPImageFetcher_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPImageFetcher(WithBackoff(time.Second)).FetchImage(ctx, server.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestHTTPImageFetcher_InvalidURL(t *testing.T) {
	_, err := NewHTTPImageFetcher().FetchImage(context.Background(), "://bad")
	if err == nil || !strings.Contains(err.Error(), "invalid URL") {
		t.Errorf("Expected invalid URL error, got %v", err)
	}
}
