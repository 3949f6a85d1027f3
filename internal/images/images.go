// Package images stores post photos on disk. Uploads are re-encoded to
// JPEG so the on-disk format is uniform regardless of what was uploaded.
package images

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const jpegQuality = 85

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Save decodes the uploaded image and writes it as <postID>.jpg, returning
// the stored path.
func (s *Store) Save(postID uuid.UUID, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	path := filepath.Join(s.dir, postID.String()+".jpg")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("encoding image: %w", err)
	}

	return path, nil
}

// Remove deletes a stored image. Missing files are not an error; other
// failures are logged and swallowed since orphaned files are harmless.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("removing image failed", "path", path, "error", err)
	}
}
