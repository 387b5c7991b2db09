package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func optionsOf(letters ...string) *Options {
	opts := NewOptions()
	for _, l := range letters {
		opts.Set(l, "内容"+l)
	}
	return opts
}

func TestTypeFromSection(t *testing.T) {
	tests := []struct {
		section string
		want    QuestionType
	}{
		{"一、单项选择题", SingleChoice},
		{"一、单选题", SingleChoice},
		{"二、多项选择题", MultipleChoice},
		{"二、多选", MultipleChoice},
		{"三、判断题", TrueFalse},
		{"四、填空题", FillBlank},
		{"五、材料分析题", Reading},
		{"五、阅读理解", Reading},
		{"六、名词概念", ShortAnswer},
		{"七、论述题", ShortAnswer},
		{"八、其他", ShortAnswer},
		{DefaultSection, ShortAnswer},
		// 先匹配到的关键字优先
		{"一、单选与判断", SingleChoice},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeFromSection(tt.section))
		})
	}
}

func TestClassifyType_OptionUpgrade(t *testing.T) {
	opts := optionsOf("A", "B", "C")

	assert.Equal(t, SingleChoice, ClassifyType("八、其他", opts, "A"))
	assert.Equal(t, MultipleChoice, ClassifyType("八、其他", opts, "AB"))
	assert.Equal(t, MultipleChoice, ClassifyType("八、其他", opts, "A,C"))
	assert.Equal(t, SingleChoice, ClassifyType("八、其他", opts, ""))
}

func TestClassifyType_HeaderKeywordsKeepPriority(t *testing.T) {
	opts := optionsOf("A", "B")

	// 标题已给出非简答题型时不会被选项覆盖
	assert.Equal(t, TrueFalse, ClassifyType("三、判断题", opts, "A"))
	assert.Equal(t, SingleChoice, ClassifyType("一、单项选择题", opts, "AB"))
	assert.Equal(t, FillBlank, ClassifyType("四、填空题", opts, "A"))
}

func TestEnforceChoiceOptions(t *testing.T) {
	assert.Equal(t, ShortAnswer, enforceChoiceOptions(SingleChoice, NewOptions()))
	assert.Equal(t, ShortAnswer, enforceChoiceOptions(MultipleChoice, nil))
	assert.Equal(t, TrueFalse, enforceChoiceOptions(TrueFalse, NewOptions()))
	assert.Equal(t, SingleChoice, enforceChoiceOptions(SingleChoice, optionsOf("A")))
}

func TestQuestionTypeHelpers(t *testing.T) {
	assert.True(t, SingleChoice.IsChoice())
	assert.False(t, FillBlank.IsChoice())
	assert.True(t, Reading.IsValid())
	assert.False(t, QuestionType("问答").IsValid())
	assert.Len(t, AllQuestionTypes(), 6)
}
