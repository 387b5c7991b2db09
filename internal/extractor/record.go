package extractor

import "strings"

// Record 抽取出的题目记录，生成后不再修改
type Record struct {
	Type        QuestionType `json:"type"`
	Question    string       `json:"question"`
	Options     *Options     `json:"options"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation"`
}

// IsChoice 是否为选择题
func (r Record) IsChoice() bool {
	return r.Type.IsChoice()
}

// buildRecord 将一道题的累积行组装为记录
// section为该题结束时生效的大题标题
func buildRecord(acc *accumulator, section string) Record {
	body, segment := SplitFields(joinLines(acc.question, acc.options))

	options := NewOptions()
	if segment != "" {
		options = ParseOptions(segment)
	}

	answer := strings.TrimSpace(strings.Join(acc.answer, " "))
	explanation := strings.TrimSpace(strings.Join(acc.explanation, " "))

	qtype := ClassifyType(section, options, answer)
	qtype = enforceChoiceOptions(qtype, options)

	return Record{
		Type:        qtype,
		Question:    body,
		Options:     options,
		Answer:      answer,
		Explanation: explanation,
	}
}
