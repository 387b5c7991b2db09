package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSplitter_Default(t *testing.T) {
	pages := DefaultLineSplitter().Split("一\n二\n\f三\r\n四\n\n")

	assert.Equal(t, []Page{{"一", "二"}, {"三", "四"}}, pages)
}

func TestLineSplitter_KeepsLinesVerbatim(t *testing.T) {
	pages := DefaultLineSplitter().Split("  1. 缩进题目  \n\n【答案】A")

	assert.Equal(t, []Page{{"  1. 缩进题目  ", "", "【答案】A"}}, pages)
}

func TestLineSplitter_NoSeparator(t *testing.T) {
	pages := LineSplitter{}.Split("a\fb\nc")

	assert.Equal(t, []Page{{"a\fb", "c"}}, pages)
}

func TestLineSplitter_DropEmptyPages(t *testing.T) {
	s := LineSplitter{PageSeparator: pageBreak, DropEmptyPages: true}

	assert.Equal(t, []Page{{"a"}, {"b"}}, s.Split("a\f \n\fb"))
	assert.Equal(t, []Page{{"a"}, {" "}, {"b"}}, DefaultLineSplitter().Split("a\f \n\fb"))
}

func TestLineSplitter_EmptyInput(t *testing.T) {
	assert.Equal(t, []Page{{}}, DefaultLineSplitter().Split(""))
	assert.Empty(t, LineSplitter{PageSeparator: pageBreak, DropEmptyPages: true}.Split(""))
}
