package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appErrors "ether-stories-api/pkg/errors"
	"ether-stories-api/pkg/logger"
)

// MediaStore 媒体产物存储端口（插图、音频）
type MediaStore interface {
	// Save 写入一份媒体文件，返回可对外引用的地址
	Save(ctx context.Context, key string, data []byte) (string, error)
}

// FileStore 本地文件系统实现。key 形如 "stories/<id>/chapter_1.png"。
type FileStore struct {
	baseDir   string
	publicURL string
}

func NewFileStore(baseDir, publicURL string) (*FileStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("media base dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, appErrors.ErrStorageError.WithError(err)
	}
	return &FileStore{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *FileStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	key = sanitizeKey(key)
	if key == "" {
		return "", appErrors.ErrStorageError.WithDetail("empty media key")
	}
	if len(data) == 0 {
		return "", appErrors.ErrStorageError.WithDetail("empty media payload")
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", appErrors.ErrStorageError.WithError(err)
	}

	// 先写临时文件再改名，避免读到半截文件
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", appErrors.ErrStorageError.WithError(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", appErrors.ErrStorageError.WithError(err)
	}

	logger.Debug(ctx, "media saved", "key", key, "bytes", len(data))

	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return path, nil
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return ""
	}
	return cleaned
}
