package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Store persists a named artifact and returns its location. The Render
// stage treats a Store failure as degradable: the artifact survives in
// the run report even when it could not be written out.
type Store interface {
	Save(name, content string) (string, error)
}

// FileStore writes artifacts as markdown files under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is
// created on first Save, not here, so constructing a store is free.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes content under a slug of name and returns the file path.
// A numeric suffix is added when the slug is already taken, so saving
// the same recipe twice never overwrites the earlier artifact.
func (s *FileStore) Save(name, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	slug := Slug(name)
	path := filepath.Join(s.dir, slug+".md")
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.md", slug, i))
	}

	// 0600 because rendered files are user documents, not shared state.
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return path, nil
}

// Slug converts a recipe title into a filesystem-safe file name:
// lowercase, runs of non-alphanumerics collapsed to single underscores,
// capped at 50 runes. Empty or fully non-alphanumeric titles become
// "recipe".
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	slug := strings.Trim(b.String(), "_")
	// Cap on a rune boundary so multi-byte titles never end mid-rune.
	if runes := []rune(slug); len(runes) > 50 {
		slug = strings.Trim(string(runes[:50]), "_")
	}
	if slug == "" {
		return "recipe"
	}
	return slug
}
