package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// 同一行内两个字形的水平间距超过字号的该比例时插入空格
const wordGapRatio = 0.25

// PDFReader PDF文档读取器
// 每页按行（自上而下）输出文本
type PDFReader struct{}

// NewPDFReader 创建一个新的PDF读取器
func NewPDFReader() PageReader {
	return &PDFReader{}
}

// ReadPages 读取PDF文件的全部页面
func (p *PDFReader) ReadPages(filePath string) ([]Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	return p.readBytes(data, -1)
}

// ReadPagesFrom 从Reader读取PDF
func (p *PDFReader) ReadPagesFrom(r io.Reader, filename string) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF content: %w", err)
	}
	return p.readBytes(data, -1)
}

// PageCount 使用pdfcpu校验文档并返回页数
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	return n, nil
}

// readBytes 读取前limit页，limit小于0表示全部
func (p *PDFReader) readBytes(data []byte, limit int) ([]Page, error) {
	pageCount, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	if n := reader.NumPage(); n < pageCount {
		pageCount = n
	}
	if limit >= 0 && limit < pageCount {
		pageCount = limit
	}

	pages := make([]Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{})
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}

		lines := make(Page, 0, len(rows))
		for _, row := range rows {
			if line := joinRow(row.Content); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, lines)
	}

	if limit >= 0 {
		return pages, nil
	}
	return ensureText(pages)
}

// joinRow 拼接一行中的字形，在明显的间隔处补空格
func joinRow(texts pdf.TextHorizontal) string {
	var b strings.Builder
	var prev *pdf.Text

	for i := range texts {
		t := &texts[i]
		if prev != nil && needsSpace(prev, t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prev = t
	}
	return b.String()
}

func needsSpace(prev, cur *pdf.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(cur.S, " ") {
		return false
	}
	gap := cur.X - (prev.X + prev.W)
	return gap > prev.FontSize*wordGapRatio
}
