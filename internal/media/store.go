// Package media implements the media store boundary: blobs in, retrievable
// URIs out. The store never inspects blob contents.
package media

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store accepts uploaded blobs and returns a URI the API can serve.
type Store interface {
	SavePostMedia(name, hashtag string, r io.Reader) (string, error)
	SaveUserPicture(userID uint, name string, r io.Reader) (string, error)
}

// DiskStore writes blobs under a root directory and returns /media/... URIs.
type DiskStore struct {
	root string
}

// NewDiskStore creates a disk-backed store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{root: dir}
}

// SavePostMedia stores a post attachment as
// <root>/posts/<slug(name)>-<slug(hashtag)>-<uuid><ext>.
func (s *DiskStore) SavePostMedia(name, hashtag string, r io.Reader) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	filename := fmt.Sprintf("%s-%s-%s%s", slugify(base), slugify(hashtag), uuid.New().String(), ext)
	return s.write(filepath.Join("posts", filename), r)
}

// SaveUserPicture stores a profile picture as
// <root>/users/<id>/<slug(name)>-<uuid><ext>.
func (s *DiskStore) SaveUserPicture(userID uint, name string, r io.Reader) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	filename := fmt.Sprintf("%s-%s%s", slugify(base), uuid.New().String(), ext)
	return s.write(filepath.Join("users", fmt.Sprintf("%d", userID), filename), r)
}

func (s *DiskStore) write(rel string, r io.Reader) (string, error) {
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return "/media/" + filepath.ToSlash(rel), nil
}

// slugify lowercases and reduces a string to [a-z0-9-], collapsing runs of
// other characters into single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
