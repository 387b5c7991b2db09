package document

import (
	"fmt"
	"os"
)

// Peek 读取文档前n页的原始行，用于检查版面
// 与ReadPages不同，没有文本时不返回错误
func Peek(filePath string, n int) ([]Page, error) {
	if n < 0 {
		n = 0
	}

	reader, err := ReaderFactory(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var pages []Page
	switch r := reader.(type) {
	case *PDFReader:
		return r.readBytes(data, n)
	case *MarkdownReader:
		pages = r.parse(data)
	case *PlainTextReader:
		pages = r.splitter.Split(string(data))
	}

	if len(pages) > n {
		pages = pages[:n]
	}
	return pages, nil
}
