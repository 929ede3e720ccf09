package storage

import (
	"errors"
	"testing"
)

func TestParseBlobRef(t *testing.T) {
	tests := []struct {
		ref       string
		container string
		blob      string
		wantErr   bool
	}{
		{"photos/2024/a.jpg", "photos", "2024/a.jpg", false},
		{"/photos/a.jpg", "photos", "a.jpg", false},
		{"https://acct.blob.core.windows.net/photos/trip/b.jpg", "photos", "trip/b.jpg", false},
		{"photos", "", "", true},
		{"photos/", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			container, blob, err := ParseBlobRef(tt.ref)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBlobRef) {
					t.Errorf("Expected ErrInvalidBlobRef, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if container != tt.container || blob != tt.blob {
				t.Errorf("Expected %s/%s, got %s/%s", tt.container, tt.blob, container, blob)
			}
		})
	}
}

func TestNewAzureBlobFetcher_Credentials(t *testing.T) {
	if _, err := NewAzureBlobFetcher("", ""); err == nil {
		t.Error("Expected error for missing credentials")
	}
	if _, err := NewAzureBlobFetcher("acct", "not base64!"); err == nil {
		t.Error("Expected error for malformed key")
	}

	// "a2V5" is base64 for "key"
	f, err := NewAzureBlobFetcher("acct", "a2V5")
	if err != nil {
		t.Fatalf("Expected valid fetcher, got %v", err)
	}
	var _ ImageFetcher = f
}
