// Package storage persists transformed avatar files on the local filesystem
// and maps them to their public URL paths.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// AvatarStore writes avatar files into the public avatars directory.
type AvatarStore struct {
	dir        string
	publicPath string
}

// NewAvatarStore builds a store rooted at dir. The directory is created on
// first use, not here.
func NewAvatarStore(dir, publicPath string) *AvatarStore {
	return &AvatarStore{dir: dir, publicPath: publicPath}
}

// Save writes data under a name derived from the owning user's id and the
// original filename. Prefixing with the user id keeps two users uploading the
// same filename from colliding.
func (s *AvatarStore) Save(userID, originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s", userID, filepath.Base(originalName))
	dest := filepath.Join(s.dir, filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	return filename, nil
}

// PublicURL returns the public path for a stored avatar filename.
func (s *AvatarStore) PublicURL(filename string) string {
	return path.Join(s.publicPath, filename)
}

// Dir exposes the storage directory for static file serving.
func (s *AvatarStore) Dir() string {
	return s.dir
}
