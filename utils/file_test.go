package utils

import (
	"strings"
	"testing"
)

func TestIsRasterImage(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"photo.tiff", true},
		{"archive.zip", false},
		{"video.mp4", false},
		{"noextension", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRasterImage(tt.filename); got != tt.want {
			t.Errorf("IsRasterImage(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestPhotoFilename(t *testing.T) {
	name := PhotoFilename("Alice Smith", ".png")
	if !strings.HasPrefix(name, "Alice_Smith_") {
		t.Errorf("expected sanitized name prefix, got %q", name)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("expected .png suffix, got %q", name)
	}

	// unsupported extensions normalize to .jpg
	if got := PhotoFilename("bob", ".exe"); !strings.HasSuffix(got, ".jpg") {
		t.Errorf("unsupported extension should fall back to .jpg, got %q", got)
	}

	// path separators and dots must not survive sanitization
	evil := PhotoFilename("../../etc/passwd", ".jpg")
	if strings.ContainsAny(evil, "/\\") || strings.Contains(evil, "..") {
		t.Errorf("sanitized name still contains path characters: %q", evil)
	}

	// long names are capped but the uuid keeps results unique
	long := PhotoFilename(strings.Repeat("a", 100), ".jpg")
	if len(long) > 40+1+36+4 {
		t.Errorf("name prefix not capped: %q (len %d)", long, len(long))
	}
	if PhotoFilename("same", ".jpg") == PhotoFilename("same", ".jpg") {
		t.Error("two filenames for the same person should differ")
	}
}
