package document

import (
	"strings"
)

// pageBreak 纯文本导出工具常用的换页符
const pageBreak = "\f"

// LineSplitter 将整段文本切分为页和行
type LineSplitter struct {
	// PageSeparator 页分隔符，为空时整段文本视为一页
	PageSeparator string
	// DropEmptyPages 是否丢弃没有任何文本的页
	DropEmptyPages bool
}

// DefaultLineSplitter 返回按换页符分页的切分器
func DefaultLineSplitter() LineSplitter {
	return LineSplitter{PageSeparator: pageBreak}
}

// Split 切分文本，行保持原样，不做去空白处理
func (s LineSplitter) Split(text string) []Page {
	text = normalizeNewlines(text)

	var chunks []string
	if s.PageSeparator == "" {
		chunks = []string{text}
	} else {
		chunks = strings.Split(text, s.PageSeparator)
	}

	pages := make([]Page, 0, len(chunks))
	for _, chunk := range chunks {
		page := splitLines(chunk)
		if s.DropEmptyPages && isBlankPage(page) {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

// normalizeNewlines 统一换行符为\n
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// splitLines 按换行符分行，去掉末尾多余的空行
func splitLines(chunk string) Page {
	chunk = strings.TrimRight(chunk, "\n")
	if chunk == "" {
		return Page{}
	}
	return Page(strings.Split(chunk, "\n"))
}

func isBlankPage(p Page) bool {
	for _, line := range p {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}
