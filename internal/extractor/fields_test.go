package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name        string
		joined      string
		wantBody    string
		wantSegment string
	}{
		{
			name:        "options after body",
			joined:      "1. 下列哪个是对的？ A.对 B.错",
			wantBody:    "1. 下列哪个是对的？",
			wantSegment: "A.对 B.错",
		},
		{
			name:        "ideographic comma marker",
			joined:      "选择正确项 A、甲 B、乙",
			wantBody:    "选择正确项",
			wantSegment: "A、甲 B、乙",
		},
		{
			name:        "marker at start",
			joined:      "A.只有选项",
			wantBody:    "",
			wantSegment: "A.只有选项",
		},
		{
			name:        "letter inside a word is not a marker",
			joined:      "USA.是一个缩写",
			wantBody:    "USA.是一个缩写",
			wantSegment: "",
		},
		{
			name:        "no marker",
			joined:      "  2. 地球是___的。 ",
			wantBody:    "2. 地球是___的。",
			wantSegment: "",
		},
		{
			name:        "full width space before marker",
			joined:      "题干　A.甲",
			wantBody:    "题干",
			wantSegment: "A.甲",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, segment := SplitFields(tt.joined)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantSegment, segment)
		})
	}
}

func TestParseOptions(t *testing.T) {
	opts := ParseOptions("A.对 B.错 C.都不对")
	assert.Equal(t, []string{"A", "B", "C"}, opts.Letters())

	text, ok := opts.Get("C")
	assert.True(t, ok)
	assert.Equal(t, "都不对", text)
}

func TestParseOptions_MultiLineContent(t *testing.T) {
	opts := ParseOptions("A. 第一行 续行 B、第二项")
	a, _ := opts.Get("A")
	b, _ := opts.Get("B")
	assert.Equal(t, "第一行 续行", a)
	assert.Equal(t, "第二项", b)
}

func TestParseOptions_PreservesTextOrder(t *testing.T) {
	opts := ParseOptions("C.丙 A.甲 B.乙")
	assert.Equal(t, []string{"C", "A", "B"}, opts.Letters())
}

func TestParseOptions_NonContiguousLetters(t *testing.T) {
	opts := ParseOptions("A.甲 C.丙")
	assert.Equal(t, []string{"A", "C"}, opts.Letters())
	_, ok := opts.Get("B")
	assert.False(t, ok)
}

func TestParseOptions_DuplicateLetterLastWriteWins(t *testing.T) {
	opts := ParseOptions("A.甲 B.乙 A.再次出现")
	assert.Equal(t, []string{"A", "B"}, opts.Letters())
	a, _ := opts.Get("A")
	assert.Equal(t, "再次出现", a)
}

func TestParseOptions_Empty(t *testing.T) {
	assert.True(t, ParseOptions("").IsEmpty())
	assert.True(t, ParseOptions("没有任何标记").IsEmpty())
}

func TestOptionsJSON(t *testing.T) {
	opts := NewOptions()
	opts.Set("C", "<丙>")
	opts.Set("A", "甲")

	data, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"C":"<丙>","A":"甲"}`, string(data))

	var decoded Options
	require.NoError(t, json.Unmarshal([]byte(`{"D":"丁","B":"乙"}`), &decoded))
	assert.Equal(t, []string{"D", "B"}, decoded.Letters())

	var empty Options
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.IsEmpty())

	assert.Error(t, json.Unmarshal([]byte(`["A"]`), &decoded))
}

func TestOptionsNilSafe(t *testing.T) {
	var opts *Options
	assert.True(t, opts.IsEmpty())
	assert.Nil(t, opts.Letters())
	_, ok := opts.Get("A")
	assert.False(t, ok)
}
