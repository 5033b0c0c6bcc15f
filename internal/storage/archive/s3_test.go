// internal/storage/archive/s3_test.go
package archive

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/newthinker/marketmind/internal/core"
)

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "file.json", "file.json"},
		{"archive", "file.json", "archive/file.json"},
		{"archive/", "/file.json", "archive/file.json"},
	}

	for _, tt := range tests {
		s, err := NewS3(S3Config{Bucket: "b", Prefix: tt.prefix})
		if err != nil {
			t.Fatalf("NewS3: %v", err)
		}
		if got := s.key(tt.path); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
		if got := s.relative(s.key(tt.path)); got != "file.json" {
			t.Errorf("relative(%q) = %q, want file.json", s.key(tt.path), got)
		}
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Config{})
	if !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", &types.NoSuchKey{})) {
		t.Error("expected NoSuchKey to be not found")
	}
	if !isNotFound(&types.NotFound{}) {
		t.Error("expected NotFound to be not found")
	}
	if isNotFound(errors.New("access denied")) {
		t.Error("expected generic error not to be not found")
	}
}

func TestContentType(t *testing.T) {
	if got := contentType("signals/AAPL/x.json"); got != "application/json" {
		t.Errorf("got %s", got)
	}
	if got := contentType("blob.bin"); got != "application/octet-stream" {
		t.Errorf("got %s", got)
	}
}
