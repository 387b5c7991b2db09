package extractor

import (
	"regexp"
	"strings"
)

// LineKind 行类型
type LineKind int

const (
	// Blank 空行
	Blank LineKind = iota
	// PageNumber 页码行
	PageNumber
	// TocEntry 目录行
	TocEntry
	// SectionHeader 大题标题行，例如"一、单项选择题"
	SectionHeader
	// QuestionStart 题目起始行，例如"1. ..."
	QuestionStart
	// AnswerMarker 答案标记行
	AnswerMarker
	// ExplanationMarker 解析标记行
	ExplanationMarker
	// OptionStart 选项起始行，仅在题干累积阶段有意义
	OptionStart
	// Content 普通内容行
	Content
)

const (
	answerToken      = "【答案】"
	explanationToken = "【解析】"
)

var kindNames = map[LineKind]string{
	Blank:             "blank",
	PageNumber:        "page_number",
	TocEntry:          "toc_entry",
	SectionHeader:     "section_header",
	QuestionStart:     "question_start",
	AnswerMarker:      "answer_marker",
	ExplanationMarker: "explanation_marker",
	OptionStart:       "option_start",
	Content:           "content",
}

// String 返回行类型名称
func (k LineKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// space 匹配任意Unicode空白，包括全角空格U+3000
const space = `[\s\v\p{Z}\x{85}]`

var (
	pageNumberPattern    = regexp.MustCompile(`^` + space + `*-?` + space + `*\d+` + space + `*-?` + space + `*$`)
	tocEntryPattern      = regexp.MustCompile(`\d+\.\d+(\.\d+)*` + space + `*$`)
	sectionHeaderPattern = regexp.MustCompile(`^[一二三四五六七八九十]+(?:[、.．]|` + space + `)`)
	questionStartPattern = regexp.MustCompile(`^\d+\.` + space)
	optionStartPattern   = regexp.MustCompile(`^[A-Z][.、]`)
)

// IsBlank 判断是否为空行
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// IsPageNumber 判断是否为页码行，例如"3"或"- 3 -"
func IsPageNumber(line string) bool {
	return pageNumberPattern.MatchString(line)
}

// IsTocEntry 判断是否为以"1.2"或"1.2.3"结尾的目录行
func IsTocEntry(line string) bool {
	return tocEntryPattern.MatchString(line)
}

// IsSectionHeader 判断是否为中文数字开头的大题标题
func IsSectionHeader(line string) bool {
	return sectionHeaderPattern.MatchString(line)
}

// IsQuestionStart 判断是否为"数字. "开头的题目起始行
// 题号只识别ASCII数字，"１．"这类全角数字按普通内容处理
func IsQuestionStart(line string) bool {
	return questionStartPattern.MatchString(line)
}

// IsAnswerMarker 判断是否以【答案】开头
func IsAnswerMarker(line string) bool {
	return strings.HasPrefix(line, answerToken)
}

// IsExplanationMarker 判断是否以【解析】开头
func IsExplanationMarker(line string) bool {
	return strings.HasPrefix(line, explanationToken)
}

// IsOptionStart 判断是否为"A."或"A、"开头的选项行
func IsOptionStart(line string) bool {
	return optionStartPattern.MatchString(line)
}

// rule 按优先级排列的分类规则
type rule struct {
	kind  LineKind
	match func(string) bool
}

// 顺序即优先级，目录判断必须先于题目起始判断
var rules = []rule{
	{Blank, IsBlank},
	{PageNumber, IsPageNumber},
	{TocEntry, IsTocEntry},
	{SectionHeader, IsSectionHeader},
	{QuestionStart, IsQuestionStart},
	{AnswerMarker, IsAnswerMarker},
	{ExplanationMarker, IsExplanationMarker},
}

// Classify 对一行已去除首尾空白的文本进行分类
// OptionStart不在此返回，由状态机在QUESTION状态下对Content行再次判断
func Classify(line string) LineKind {
	for _, r := range rules {
		if r.match(line) {
			return r.kind
		}
	}
	return Content
}

// stripMarker 去掉行中的标记并返回剩余文本
func stripMarker(line, token string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, token, ""))
}
