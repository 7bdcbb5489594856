// Package upload stores host media files under a content root and returns
// the relative paths persisted on the host record. Each category carries its
// own extension whitelist and size cap.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownCategory = errors.New("unknown upload category")
	ErrBadExtension    = errors.New("file extension not allowed for this category")
	ErrTooLarge        = errors.New("file exceeds the category size limit")
)

type categoryRule struct {
	extensions map[string]bool
	maxBytes   int64
}

var rules = map[string]categoryRule{
	"images": {
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true},
		maxBytes:   5 << 20, // 5 MiB
	},
	"videos": {
		extensions: map[string]bool{".mp4": true, ".mov": true, ".webm": true},
		maxBytes:   100 << 20,
	},
	"documents": {
		extensions: map[string]bool{".pdf": true, ".doc": true, ".docx": true},
		maxBytes:   10 << 20,
	},
}

// ValidCategory reports whether the category has upload rules.
func ValidCategory(category string) bool {
	_, ok := rules[category]
	return ok
}

// Validate checks a file header against the category's extension whitelist
// and size cap without reading the file.
func Validate(category, filename string, size int64) error {
	rule, ok := rules[category]
	if !ok {
		return ErrUnknownCategory
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !rule.extensions[ext] {
		return ErrBadExtension
	}
	if size > rule.maxBytes {
		return ErrTooLarge
	}
	return nil
}

// Store saves one multipart file under root/category/<host>/ with a uuid
// filename and returns the stored relative path.
func Store(root, category string, hostID uint64, fh *multipart.FileHeader) (string, error) {
	if err := Validate(category, fh.Filename, fh.Size); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := filepath.Join(root, category, fmt.Sprintf("%d", hostID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	return filepath.ToSlash(filepath.Join(category, fmt.Sprintf("%d", hostID), name)), nil
}
