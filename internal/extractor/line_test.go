package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want LineKind
	}{
		{"", Blank},
		{"   ", Blank},
		{"12", PageNumber},
		{"- 12 -", PageNumber},
		{"-3", PageNumber},
		{"简介 1.1", TocEntry},
		{"五、材料分析题 1.2.5", TocEntry},
		{"1.1", TocEntry},
		{"一、单项选择题", SectionHeader},
		{"十二.判断题", SectionHeader},
		{"三．填空题", SectionHeader},
		{"四 简答题", SectionHeader},
		{"1. 下列哪个是对的？", QuestionStart},
		{"23.\t地球是圆的", QuestionStart},
		{"【答案】A", AnswerMarker},
		{"【答案】", AnswerMarker},
		{"【解析】因为如此", ExplanationMarker},
		{"A.对", Content},
		{"1.下列", Content},
		{"一些普通内容", Content},
		{"答案是A", Content},
		// 全角空格等Unicode空白
		{"　12　", PageNumber},
		{"-\u300012\u3000-", PageNumber},
		{"简介\u30001.1\u3000", TocEntry},
		{"一\u3000单项选择题", SectionHeader},
		{"二\u00a0多项选择题", SectionHeader},
		{"1.\u3000下列哪个对？", QuestionStart},
		{"12.\u00a0地球是圆的", QuestionStart},
		{"１．全角数字", Content},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestClassify_TocBeforeQuestionStart(t *testing.T) {
	// 以小节编号结尾的行即使以"1. "开头也按目录处理
	assert.True(t, IsQuestionStart("1. 总论 2.1"))
	assert.Equal(t, TocEntry, Classify("1. 总论 2.1"))
}

func TestClassify_TocBeforeSectionHeader(t *testing.T) {
	assert.True(t, IsSectionHeader("二、多项选择题 1.2"))
	assert.Equal(t, TocEntry, Classify("二、多项选择题 1.2"))
}

func TestIsOptionStart(t *testing.T) {
	assert.True(t, IsOptionStart("A.对"))
	assert.True(t, IsOptionStart("B、错"))
	assert.True(t, IsOptionStart("Z. 最后一项"))
	assert.False(t, IsOptionStart("a.小写"))
	assert.False(t, IsOptionStart("AB.两个字母"))
	assert.False(t, IsOptionStart(" A.前导空白"))
	assert.False(t, IsOptionStart("A:冒号"))
}

func TestStripMarker(t *testing.T) {
	assert.Equal(t, "A", stripMarker("【答案】A", answerToken))
	assert.Equal(t, "", stripMarker("【答案】  ", answerToken))
	assert.Equal(t, "因为 如此", stripMarker("【解析】 因为 如此 ", explanationToken))
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "section_header", SectionHeader.String())
	assert.Equal(t, "unknown", LineKind(99).String())
}

func TestIsQuestionStart_ASCIIDigitsOnly(t *testing.T) {
	assert.True(t, IsQuestionStart("3.\u3000题干"))
	assert.False(t, IsQuestionStart("３.\u3000题干"))
	assert.False(t, IsQuestionStart("1.题干"))
}
