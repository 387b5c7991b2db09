package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/question-bank/internal/database"
	"github.com/fyerfyer/question-bank/internal/extractor"
	"github.com/fyerfyer/question-bank/internal/models"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	// 使用唯一的内存数据库标识符
	dbName := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(&models.ImportJob{}, &models.QuestionRecord{})
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = originalDB
	}
	return db, cleanup
}

func newJob(id string) *models.ImportJob {
	return &models.ImportJob{
		ID:        id,
		FileName:  id + ".pdf",
		FileType:  "pdf",
		SourceKey: "sources/" + id + ".pdf",
		FileSize:  1024,
	}
}

func questionsFrom(t *testing.T, lines ...string) []*models.QuestionRecord {
	records := extractor.New().ExtractLines(lines)
	out := make([]*models.QuestionRecord, 0, len(records))
	for i, rec := range records {
		q, err := models.NewQuestionRecord("", i, rec)
		require.NoError(t, err)
		out = append(out, q)
	}
	return out
}

func TestImportRepository_CreateAndGet(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewImportRepository()
	require.NoError(t, repo.Create(newJob("imp-1")))

	job, err := repo.GetByID("imp-1")
	require.NoError(t, err)
	assert.Equal(t, "imp-1.pdf", job.FileName)
	assert.Equal(t, models.ImportStatusUploaded, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Nil(t, job.ProcessedAt)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, models.ErrImportNotFound)

	assert.Error(t, repo.Create(&models.ImportJob{}))
}

func TestImportRepository_UpdateStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewImportRepositoryWithDB(db)
	require.NoError(t, repo.Create(newJob("imp-1")))

	require.NoError(t, repo.UpdateStatus("imp-1", models.ImportStatusProcessing, ""))
	job, err := repo.GetByID("imp-1")
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusProcessing, job.Status)
	assert.Nil(t, job.ProcessedAt)

	require.NoError(t, repo.UpdateStatus("imp-1", models.ImportStatusFailed, "document contains no text"))
	job, err = repo.GetByID("imp-1")
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, job.Status)
	assert.Equal(t, "document contains no text", job.Error)
	assert.NotNil(t, job.ProcessedAt)

	assert.ErrorIs(t, repo.UpdateStatus("imp-1", "archived", ""), models.ErrInvalidImportStatus)
	assert.ErrorIs(t, repo.UpdateStatus("missing", models.ImportStatusCompleted, ""), models.ErrImportNotFound)
}

func TestImportRepository_Update(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewImportRepository()
	job := newJob("imp-1")
	require.NoError(t, repo.Create(job))

	job.QuestionCount = 12
	job.PageCount = 3
	job.ExportKey = "exports/imp-1.json"
	require.NoError(t, repo.Update(job))

	got, err := repo.GetByID("imp-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.QuestionCount)
	assert.Equal(t, 3, got.PageCount)
	assert.Equal(t, "exports/imp-1.json", got.ExportKey)
}

func TestImportRepository_SetTaskID(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewImportRepository()
	require.NoError(t, repo.Create(newJob("imp-1")))
	require.NoError(t, repo.UpdateStatus("imp-1", models.ImportStatusProcessing, ""))

	require.NoError(t, repo.SetTaskID("imp-1", "task-1"))

	got, err := repo.GetByID("imp-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", got.TaskID)
	assert.Equal(t, models.ImportStatusProcessing, got.Status)

	assert.ErrorIs(t, repo.SetTaskID("missing", "task-2"), models.ErrImportNotFound)
}

func TestImportRepository_List(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewImportRepository()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		job := newJob(fmt.Sprintf("imp-%d", i))
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if i%2 == 0 {
			job.FileType = "markdown"
			job.FileName = fmt.Sprintf("bank-%d.md", i)
		}
		require.NoError(t, repo.Create(job))
	}
	require.NoError(t, repo.UpdateStatus("imp-4", models.ImportStatusCompleted, ""))

	jobs, total, err := repo.List(0, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "imp-4", jobs[0].ID)

	jobs, total, err = repo.List(0, 10, map[string]interface{}{"file_type": "markdown"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, jobs, 3)

	_, total, err = repo.List(0, 10, map[string]interface{}{"status": models.ImportStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.List(0, 10, map[string]interface{}{"status": "uploaded", "file_name": "bank-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestImportRepository_DeleteCascadesQuestions(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	imports := NewImportRepositoryWithDB(db)
	questions := NewQuestionRepositoryWithDB(db)

	require.NoError(t, imports.Create(newJob("imp-1")))
	require.NoError(t, questions.ReplaceForImport("imp-1", questionsFrom(t, "1. 题一", "2. 题二")))

	require.NoError(t, imports.Delete("imp-1"))
	_, err := imports.GetByID("imp-1")
	assert.ErrorIs(t, err, models.ErrImportNotFound)

	left, err := questions.ListByImport("imp-1")
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, imports.Delete("imp-1"), models.ErrImportNotFound)
}

func TestQuestionRepository_ReplaceForImport(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewQuestionRepository()
	require.NoError(t, repo.ReplaceForImport("imp-1", questionsFrom(t,
		"一、单项选择题",
		"1. 下列哪个是对的？",
		"C.丙 A.甲",
		"【答案】A",
		"二、填空题",
		"2. 地球是___的。",
	)))

	list, err := repo.ListByImport("imp-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, "imp-1", list[0].ImportID)
	assert.Equal(t, "单选", list[0].Type)

	rec, err := list[0].ToRecord()
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, rec.Options.Letters())

	// 重复处理时替换旧结果
	require.NoError(t, repo.ReplaceForImport("imp-1", questionsFrom(t, "1. 唯一的题")))
	list, err = repo.ListByImport("imp-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1. 唯一的题", list[0].Question)
	assert.JSONEq(t, `{}`, string(list[0].Options))

	require.NoError(t, repo.ReplaceForImport("imp-1", nil))
	list, err = repo.ListByImport("imp-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestQuestionRepository_SearchAndCount(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewQuestionRepository()
	require.NoError(t, repo.ReplaceForImport("imp-1", questionsFrom(t,
		"一、判断题",
		"1. 太阳从东边升起。",
		"2. 月亮会发光。",
		"二、填空题",
		"3. 地球是___的。",
	)))
	require.NoError(t, repo.ReplaceForImport("imp-2", questionsFrom(t,
		"一、判断题",
		"1. 太阳是恒星。",
	)))

	list, total, err := repo.Search(0, 10, QuestionFilter{Type: "判断"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)

	list, total, err = repo.Search(0, 1, QuestionFilter{Keyword: "太阳"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "imp-1", list[0].ImportID)

	_, total, err = repo.Search(0, 10, QuestionFilter{ImportID: "imp-2", Type: "填空"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	counts, err := repo.CountByType("imp-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"判断": 2, "填空": 1}, counts)

	counts, err = repo.CountByType("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts["判断"])

	require.NoError(t, repo.DeleteByImport("imp-1"))
	counts, err = repo.CountByType("")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"判断": 1}, counts)
}
