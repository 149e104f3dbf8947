package media

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PhotoStore persists enrollment reference photos on the local filesystem.
// Paths handed back to callers are relative to the store root, which is what
// gets recorded on the identity as its photo reference.
type PhotoStore struct {
	basePath string
}

// NewPhotoStore creates a photo store rooted at basePath, creating the
// directory if needed
func NewPhotoStore(basePath string) (*PhotoStore, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid photo storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo storage directory '%s': %w", absBasePath, err)
	}

	log.Printf("media.store: initialized photo store at %s", absBasePath)
	return &PhotoStore{basePath: absBasePath}, nil
}

// BasePath returns the absolute root of the store
func (ps *PhotoStore) BasePath() string {
	return ps.basePath
}

// Save writes data under the given filename and returns the relative path
func (ps *PhotoStore) Save(filename string, data io.Reader) (string, error) {
	fullPath, err := ps.FullPath(filename)
	if err != nil {
		return "", err
	}

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file '%s': %w", fullPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, data); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write photo file '%s': %w", fullPath, err)
	}
	return filename, nil
}

// Delete removes a stored photo; deleting an absent photo is not an error
func (ps *PhotoStore) Delete(relativePath string) error {
	fullPath, err := ps.FullPath(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo '%s': %w", relativePath, err)
	}
	return nil
}

// FullPath resolves a relative photo path inside the store, rejecting paths
// that escape the base directory
func (ps *PhotoStore) FullPath(relativePath string) (string, error) {
	if relativePath == "" || strings.Contains(relativePath, "..") {
		return "", fmt.Errorf("invalid photo path '%s'", relativePath)
	}
	fullPath := filepath.Join(ps.basePath, relativePath)
	if !strings.HasPrefix(filepath.Clean(fullPath), ps.basePath) {
		return "", fmt.Errorf("photo path '%s' resolves outside storage root", relativePath)
	}
	return fullPath, nil
}
