package document

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownReader Markdown题库读取器
// 分隔线(---)作为分页，有序列表项恢复"N. "编号
type MarkdownReader struct{}

// NewMarkdownReader 创建新的Markdown读取器
func NewMarkdownReader() PageReader {
	return &MarkdownReader{}
}

// ReadPages 读取Markdown文件
func (p *MarkdownReader) ReadPages(filePath string) ([]Page, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open markdown file: %w", err)
	}
	defer file.Close()

	return p.ReadPagesFrom(file, filePath)
}

// ReadPagesFrom 从Reader读取Markdown内容
func (p *MarkdownReader) ReadPagesFrom(r io.Reader, filename string) ([]Page, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown content: %w", err)
	}

	return ensureText(p.parse(content))
}

// parse 将Markdown内容转换为页面，不检查是否有文本
func (p *MarkdownReader) parse(content []byte) []Page {
	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.OrderedListStart)
	doc := markdown.Parse(normalizeNewlinesBytes(content), mdParser)

	c := &mdCollector{}
	ast.WalkFunc(doc, c.visit)
	c.flushPage()

	return c.pages
}

// mdCollector 遍历AST时收集行和页
type mdCollector struct {
	pages []Page
	page  Page
	line  strings.Builder
	// prefix 等待写入下一行开头的列表编号
	prefix string
}

func (c *mdCollector) visit(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.HorizontalRule:
		if entering {
			c.flushLine()
			c.flushPage()
		}
	case *ast.ListItem:
		if entering {
			c.flushLine()
			c.prefix = listItemPrefix(n)
		} else {
			c.flushLine()
			c.prefix = ""
		}
	case *ast.Paragraph, *ast.Heading, *ast.BlockQuote, *ast.TableRow:
		c.flushLine()
	case *ast.TableCell:
		if entering && c.line.Len() > 0 {
			c.line.WriteByte(' ')
		}
	case *ast.Softbreak, *ast.Hardbreak:
		if entering {
			c.flushLine()
		}
	case *ast.CodeBlock:
		if entering {
			c.flushLine()
			c.writeText(n.Literal)
			c.flushLine()
		}
	case *ast.Text:
		if entering {
			c.writeText(n.Literal)
		}
	case *ast.Code:
		if entering {
			c.writeText(n.Literal)
		}
	}
	return ast.GoToNext
}

// writeText 写入文本，内部换行视为行边界
func (c *mdCollector) writeText(literal []byte) {
	parts := strings.Split(string(literal), "\n")
	for i, part := range parts {
		if i > 0 {
			c.flushLine()
		}
		if c.prefix != "" && part != "" && c.line.Len() == 0 {
			c.line.WriteString(c.prefix)
			c.prefix = ""
		}
		c.line.WriteString(part)
	}
}

func (c *mdCollector) flushLine() {
	line := c.line.String()
	c.line.Reset()
	if strings.TrimSpace(line) == "" {
		return
	}
	c.page = append(c.page, line)
}

func (c *mdCollector) flushPage() {
	c.flushLine()
	if len(c.page) == 0 {
		return
	}
	c.pages = append(c.pages, c.page)
	c.page = nil
}

// listItemPrefix 有序列表项恢复原始编号
func listItemPrefix(item *ast.ListItem) string {
	if item.ListFlags&ast.ListTypeOrdered == 0 {
		return ""
	}
	list, ok := item.GetParent().(*ast.List)
	if !ok {
		return ""
	}

	start := list.Start
	if start <= 0 {
		start = 1
	}
	index := 0
	for i, child := range list.GetChildren() {
		if child == ast.Node(item) {
			index = i
			break
		}
	}

	delim := item.Delimiter
	if delim == 0 {
		delim = '.'
	}
	return fmt.Sprintf("%d%c ", start+index, delim)
}

func normalizeNewlinesBytes(content []byte) []byte {
	return []byte(normalizeNewlines(string(content)))
}
