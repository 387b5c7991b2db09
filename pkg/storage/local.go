package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage 本地文件存储实现
// 对象键直接映射为基础目录下的相对路径
type LocalStorage struct {
	basePath string // 基础存储路径
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string // 本地存储路径
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: absPath,
	}, nil
}

func (s *LocalStorage) resolve(key string) (string, string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(s.basePath, filepath.FromSlash(cleaned)), nil
}

// Put 写入对象，先写临时文件再重命名
func (s *LocalStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) (ObjectInfo, error) {
	key, filePath, err := s.resolve(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, reader)
	if err != nil {
		tmp.Close()
		return ObjectInfo{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to store file: %w", err)
	}

	if contentType == "" {
		contentType = MimeType(key)
	}
	return ObjectInfo{Key: key, Size: size, ContentType: contentType}, nil
}

// Get 获取对象内容
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key, filePath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Exists 检查对象是否存在
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, filePath, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Delete 删除对象
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	key, filePath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List 列出前缀下的对象，按键排序
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{
			Key:         key,
			Size:        info.Size(),
			ContentType: MimeType(key),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
