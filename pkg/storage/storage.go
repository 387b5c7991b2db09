package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound 对象不存在
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey 非法的对象键
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectInfo 对象元数据
type ObjectInfo struct {
	Key         string // 对象键，使用/分隔
	Size        int64  // 大小(字节)
	ContentType string // MIME类型
}

// Storage 按键寻址的对象存储接口
// 可以有不同实现(本地文件系统、MinIO等)
type Storage interface {
	// Put 写入对象，已存在时覆盖
	Put(ctx context.Context, key string, reader io.Reader, contentType string) (ObjectInfo, error)

	// Get 读取对象内容，不存在时返回ErrNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists 检查对象是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Delete 删除对象，不存在时返回ErrNotFound
	Delete(ctx context.Context, key string) error

	// List 列出指定前缀下的对象
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Config 存储配置
type Config struct {
	Type  string      // 存储类型: local, minio
	Local LocalConfig // 本地存储配置
	Minio MinioConfig // MinIO存储配置
}

// New 根据配置创建存储实例
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.Local)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// SourceKey 源文件的存储键
func SourceKey(id, filename string) string {
	return "sources/" + id + strings.ToLower(filepath.Ext(filename))
}

// ExportKey 导出JSON的存储键
func ExportKey(id string) string {
	return "exports/" + id + ".json"
}

// cleanKey 规范化对象键，拒绝越出根目录的键
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.ReplaceAll(key, "\\", "/"), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// MimeType 根据文件扩展名判断MIME类型
func MimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
