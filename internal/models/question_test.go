package models

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/question-bank/internal/extractor"
)

func TestQuestionRecordConversion(t *testing.T) {
	records := extractor.Extract([][]string{{
		"一、多项选择题",
		"1. 下列哪些是水果？",
		"C.白菜 A.苹果 B.香蕉",
		"【答案】AB",
	}})
	require.Len(t, records, 1)

	q, err := NewQuestionRecord("imp-1", 0, records[0])
	require.NoError(t, err)
	assert.Equal(t, "多选", q.Type)
	assert.JSONEq(t, `{"C":"白菜","A":"苹果","B":"香蕉"}`, string(q.Options))

	back, err := q.ToRecord()
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, back.Options.Letters())
	assert.Equal(t, records[0].Answer, back.Answer)
	assert.Equal(t, extractor.MultipleChoice, back.Type)
}

func TestQuestionRecordEmptyOptions(t *testing.T) {
	q := &QuestionRecord{Type: "简答题", Question: "q"}
	rec, err := q.ToRecord()
	require.NoError(t, err)
	assert.True(t, rec.Options.IsEmpty())

	q.Options = []byte(`[1]`)
	_, err = q.ToRecord()
	assert.Error(t, err)
}

func TestImportStatus(t *testing.T) {
	assert.True(t, ImportStatusCompleted.IsFinal())
	assert.True(t, ImportStatusFailed.IsFinal())
	assert.False(t, ImportStatusProcessing.IsFinal())
	assert.True(t, ImportStatusUploaded.IsValid())
	assert.False(t, ImportStatus("archived").IsValid())
}

func TestQuestionRecordCorruptOptions(t *testing.T) {
	q := &QuestionRecord{ID: 7, Type: "单选题", Question: "1. 题干", Options: datatypes.JSON(`{"A":`)}

	_, err := q.ToRecord()
	require.Error(t, err)
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, err.Error(), "question 7")
}
