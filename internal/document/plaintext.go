package document

import (
	"fmt"
	"io"
	"os"
)

// PlainTextReader 纯文本读取器，换页符分隔页面
type PlainTextReader struct {
	splitter LineSplitter
}

// NewPlainTextReader 创建一个新的纯文本读取器
func NewPlainTextReader() PageReader {
	return &PlainTextReader{splitter: DefaultLineSplitter()}
}

// ReadPages 读取纯文本文件
func (p *PlainTextReader) ReadPages(filePath string) ([]Page, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open text file: %w", err)
	}
	defer file.Close()

	return p.ReadPagesFrom(file, filePath)
}

// ReadPagesFrom 从Reader读取纯文本
func (p *PlainTextReader) ReadPagesFrom(r io.Reader, filename string) ([]Page, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	return ensureText(p.splitter.Split(string(content)))
}
