package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyerfyer/question-bank/internal/extractor"
)

// extractionPrefix 抽取结果缓存键前缀
const extractionPrefix = "extract"

// HashContent 计算文件内容的SHA-256十六进制摘要
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Entry 缓存的一次抽取结果
type Entry struct {
	PageCount int                `json:"page_count"`
	Records   []extractor.Record `json:"records"`
}

// ExtractionCache 按源文件摘要缓存抽取结果
type ExtractionCache struct {
	cache Cache
	ttl   time.Duration
}

// NewExtractionCache 创建抽取结果缓存，ttl为0时使用底层缓存的默认值
func NewExtractionCache(c Cache, ttl time.Duration) *ExtractionCache {
	return &ExtractionCache{cache: c, ttl: ttl}
}

// Key 返回摘要对应的缓存键
func (e *ExtractionCache) Key(hash string) string {
	return GenerateCacheKey(extractionPrefix, hash)
}

// Get 读取缓存的抽取结果
func (e *ExtractionCache) Get(hash string) (*Entry, bool, error) {
	value, found, err := e.cache.Get(e.Key(hash))
	if err != nil || !found {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		// 内容损坏时视为未命中
		_ = e.cache.Delete(e.Key(hash))
		return nil, false, nil
	}
	if entry.Records == nil {
		entry.Records = []extractor.Record{}
	}
	for i := range entry.Records {
		if entry.Records[i].Options == nil {
			entry.Records[i].Options = extractor.NewOptions()
		}
	}
	return &entry, true, nil
}

// Set 写入抽取结果
func (e *ExtractionCache) Set(hash string, entry Entry) error {
	if entry.Records == nil {
		entry.Records = []extractor.Record{}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return e.cache.Set(e.Key(hash), string(data), e.ttl)
}

// Invalidate 删除缓存的抽取结果
func (e *ExtractionCache) Invalidate(hash string) error {
	return e.cache.Delete(e.Key(hash))
}
