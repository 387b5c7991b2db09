package document

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFileType 不支持的文档类型
	ErrUnsupportedFileType = errors.New("unsupported document type")
	// ErrEmptyDocument 文档中没有任何非空文本行
	ErrEmptyDocument = errors.New("document contains no text")
)

// Page 一页文本，按版面顺序排列的原始行
type Page []string

// PageReader 文档分页读取器接口
// 负责把不同格式的文档转换为按页、按行组织的文本
type PageReader interface {
	// ReadPages 读取文件的全部页面
	ReadPages(filePath string) ([]Page, error)

	// ReadPagesFrom 从Reader读取全部页面
	// filename用于确定文档类型
	ReadPagesFrom(r io.Reader, filename string) ([]Page, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ReaderFactory 根据文件类型创建对应的分页读取器
func ReaderFactory(filePath string) (PageReader, error) {
	switch DetectContentType(filePath) {
	case PDF:
		return NewPDFReader(), nil
	case Markdown:
		return NewMarkdownReader(), nil
	case PlainText:
		return NewPlainTextReader(), nil
	default:
		return nil, ErrUnsupportedFileType
	}
}

// DetectContentType 根据文件扩展名检测内容类型
func DetectContentType(filePath string) ContentType {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// IsSupported 判断文件是否为支持的题库格式
func IsSupported(filePath string) bool {
	return DetectContentType(filePath) != Unknown
}

// ToLines 将页面列表转换为抽取器需要的二维行数组
func ToLines(pages []Page) [][]string {
	out := make([][]string, len(pages))
	for i, p := range pages {
		out[i] = []string(p)
	}
	return out
}

// CountLines 统计非空行数量
func CountLines(pages []Page) int {
	n := 0
	for _, p := range pages {
		for _, line := range p {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
	}
	return n
}

// ensureText 没有任何文本时返回ErrEmptyDocument
func ensureText(pages []Page) ([]Page, error) {
	if CountLines(pages) == 0 {
		return nil, ErrEmptyDocument
	}
	return pages, nil
}
