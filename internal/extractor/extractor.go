// Package extractor 将题库文本切分为结构化题目记录
//
// 整个文档被视为一条连续的行流，题目和大题可以跨页。
// 选项标记如果出现在一行中间（例如"哪个正确？ A. 是 B. 否"），
// 该行不会在状态机阶段被拆开，而是整体归入当前分桶，之后由SplitFields统一定位。
package extractor

import "github.com/sirupsen/logrus"

// Extractor 题目抽取器
type Extractor struct {
	logger *logrus.Logger
}

// Option 抽取器配置选项
type Option func(*Extractor)

// WithLogger 设置调试日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New 创建抽取器
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 处理按页组织的文本行，返回按文档顺序排列的题目记录
func (e *Extractor) Extract(pages [][]string) []Record {
	seg := NewSegmenter(e.logger)
	for _, page := range pages {
		for _, line := range page {
			seg.Feed(line)
		}
	}
	return seg.Close()
}

// ExtractLines 处理单页文本
func (e *Extractor) ExtractLines(lines []string) []Record {
	return e.Extract([][]string{lines})
}

// Extract 使用默认配置抽取题目
func Extract(pages [][]string) []Record {
	return New().Extract(pages)
}
