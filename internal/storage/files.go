package storage

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"klaimportal/internal/domain"
	"klaimportal/internal/utils"
)

// FileStore saves uploaded files under a base directory and hands back
// relative paths for persistence. Records reference files by path only;
// contents are never embedded in the database.
type FileStore struct {
	BaseDir string
}

func (s FileStore) dir() string {
	if strings.TrimSpace(s.BaseDir) != "" {
		return s.BaseDir
	}
	return "uploads"
}

// Save writes the uploaded file under <base>/<bucket>/ with a generated,
// collision-proof name. The returned path is relative to the base directory.
func (s FileStore) Save(fh *multipart.FileHeader, bucket string) (string, error) {
	if fh == nil {
		return "", domain.ValidationError{Field: "file", Msg: "file wajib diunggah"}
	}
	if fh.Size <= 0 {
		return "", domain.ValidationError{Field: "file", Msg: "file kosong"}
	}

	bucket = utils.SafeFilenamePart(bucket)
	targetDir := filepath.Join(s.dir(), bucket)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("gagal menyiapkan folder upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if len(ext) > 10 {
		ext = ""
	}
	name := fmt.Sprintf("%d-%06d%s", time.Now().UnixNano(), rand.Intn(1000000), ext)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fullPath := filepath.Join(targetDir, name)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(fullPath)
		return "", err
	}

	return filepath.ToSlash(filepath.Join(bucket, name)), nil
}

// Remove deletes a stored file by its relative path. Paths escaping the base
// directory are refused.
func (s FileStore) Remove(relPath string) error {
	full, err := s.Resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve maps a stored relative path to the absolute location on disk,
// guarding against path traversal.
func (s FileStore) Resolve(relPath string) (string, error) {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return "", domain.ValidationError{Field: "path", Msg: "path kosong"}
	}
	base, err := filepath.Abs(s.dir())
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(base, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", domain.ValidationError{Field: "path", Msg: "path tidak valid"}
	}
	return full, nil
}
