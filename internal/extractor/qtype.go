package extractor

import (
	"strings"
	"unicode/utf8"
)

// QuestionType 题目类型
type QuestionType string

const (
	// SingleChoice 单选
	SingleChoice QuestionType = "单选"
	// MultipleChoice 多选
	MultipleChoice QuestionType = "多选"
	// TrueFalse 判断
	TrueFalse QuestionType = "判断"
	// FillBlank 填空
	FillBlank QuestionType = "填空"
	// Reading 阅读理解（材料分析）
	Reading QuestionType = "阅读理解"
	// ShortAnswer 简答题，也是默认类型
	ShortAnswer QuestionType = "简答题"
)

// DefaultSection 遇到第一个大题标题之前使用的上下文
const DefaultSection = "简答题"

// AllQuestionTypes 返回全部题目类型
func AllQuestionTypes() []QuestionType {
	return []QuestionType{SingleChoice, MultipleChoice, TrueFalse, FillBlank, Reading, ShortAnswer}
}

// IsValid 是否为已知题目类型
func (t QuestionType) IsValid() bool {
	for _, known := range AllQuestionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice 是否为选择题
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultipleChoice
}

// keywordRule 标题关键字到题型的映射，按顺序匹配
type keywordRule struct {
	keywords []string
	qtype    QuestionType
}

var sectionKeywords = []keywordRule{
	{[]string{"单项选择", "单选"}, SingleChoice},
	{[]string{"多项选择", "多选"}, MultipleChoice},
	{[]string{"判断"}, TrueFalse},
	{[]string{"填空"}, FillBlank},
	{[]string{"材料", "阅读"}, Reading},
	{[]string{"概念", "简答", "论述"}, ShortAnswer},
}

// TypeFromSection 根据大题标题关键字判断题型，没有匹配时返回简答题
func TypeFromSection(section string) QuestionType {
	for _, r := range sectionKeywords {
		for _, kw := range r.keywords {
			if strings.Contains(section, kw) {
				return r.qtype
			}
		}
	}
	return ShortAnswer
}

// ClassifyType 综合标题关键字、选项和答案得出题型
// 没有选项的选择题降级在组装记录时进行，见buildRecord
func ClassifyType(section string, options *Options, answer string) QuestionType {
	qtype := TypeFromSection(section)

	// 有选项但标题没有给出选择题关键字时升级为选择题
	if !options.IsEmpty() && qtype == ShortAnswer {
		if strings.Contains(answer, ",") || utf8.RuneCountInString(answer) > 1 {
			qtype = MultipleChoice
		} else {
			qtype = SingleChoice
		}
	}

	return qtype
}

// enforceChoiceOptions 没有选项的选择题一律降级为简答题
func enforceChoiceOptions(qtype QuestionType, options *Options) QuestionType {
	if options.IsEmpty() && qtype.IsChoice() {
		return ShortAnswer
	}
	return qtype
}
