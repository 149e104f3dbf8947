package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// PhotoFilename builds a unique, filesystem-safe filename for an enrollment
// photo, keeping the person's name as a readable prefix
func PhotoFilename(name, ext string) string {
	ext = strings.ToLower(ext)
	if !supportedImageExtensions[ext] {
		ext = ".jpg"
	}

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if len(sanitized) > 40 {
		sanitized = sanitized[:40]
	}

	return fmt.Sprintf("%s_%s%s", sanitized, uuid.NewString(), ext)
}
