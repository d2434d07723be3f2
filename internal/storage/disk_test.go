package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLocalUploader_CreatesBaseDir(t *testing.T) {
	t.Parallel()
	base := filepath.Join(t.TempDir(), "artifacts")
	if _, err := NewLocalUploader(base); err != nil {
		t.Fatalf("NewLocalUploader() error = %v", err)
	}
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		t.Errorf("expected base dir %q to exist", base)
	}
}

func TestLocalUploader_Upload_WritesFileAndReturnsFileURL(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	u, err := NewLocalUploader(base)
	if err != nil {
		t.Fatalf("NewLocalUploader() error = %v", err)
	}

	result, err := u.Upload(context.Background(), &UploadRequest{
		ObjectName:  "shot1.png",
		Content:     strings.NewReader("fake-png-bytes"),
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.ObjectName != "shot1.png" {
		t.Errorf("ObjectName = %q, want shot1.png", result.ObjectName)
	}
	if !strings.HasPrefix(result.SignedURL, "file://") {
		t.Errorf("SignedURL = %q, want file:// scheme", result.SignedURL)
	}
	if !result.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero value for local uploads", result.ExpiresAt)
	}

	data, err := os.ReadFile(filepath.Join(base, "shot1.png"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "fake-png-bytes" {
		t.Errorf("file content = %q, want fake-png-bytes", data)
	}
}

func TestLocalUploader_Upload_CreatesNestedDirectories(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	u, err := NewLocalUploader(base)
	if err != nil {
		t.Fatalf("NewLocalUploader() error = %v", err)
	}

	_, err = u.Upload(context.Background(), &UploadRequest{
		ObjectName: "nested/dir/file.txt",
		Content:    strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "nested", "dir", "file.txt")); err != nil {
		t.Errorf("expected nested file to exist: %v", err)
	}
}
