package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/question-bank/internal/models"
	"github.com/fyerfyer/question-bank/internal/repository"
)

func TestValidateStateTransition(t *testing.T) {
	tests := []struct {
		from, to models.ImportStatus
		ok       bool
	}{
		{models.ImportStatusUploaded, models.ImportStatusProcessing, true},
		{models.ImportStatusUploaded, models.ImportStatusFailed, true},
		{models.ImportStatusUploaded, models.ImportStatusCompleted, false},
		{models.ImportStatusProcessing, models.ImportStatusCompleted, true},
		{models.ImportStatusProcessing, models.ImportStatusProcessing, true},
		{models.ImportStatusFailed, models.ImportStatusProcessing, true},
		{models.ImportStatusCompleted, models.ImportStatusProcessing, false},
		{models.ImportStatusCompleted, models.ImportStatusFailed, false},
	}

	for _, tt := range tests {
		err := ValidateStateTransition(tt.from, tt.to)
		if tt.ok {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidImportStatus, "%s -> %s", tt.from, tt.to)
		}
	}
}

func TestImportStatusManager_Lifecycle(t *testing.T) {
	setupTestDB(t)
	repo := repository.NewImportRepository()
	manager := NewImportStatusManager(repo, quietLogger())
	ctx := context.Background()

	job := &models.ImportJob{ID: "imp-1", FileName: "bank.pdf", FileType: "pdf", SourceKey: "sources/imp-1.pdf"}
	require.NoError(t, manager.MarkAsUploaded(ctx, job))

	processing, err := manager.MarkAsProcessing(ctx, "imp-1")
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusProcessing, processing.Status)

	require.NoError(t, manager.MarkAsCompleted(ctx, "imp-1", 4, 20, "exports/imp-1.json"))

	done, err := repo.GetByID("imp-1")
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, done.Status)
	assert.Equal(t, 4, done.PageCount)
	assert.Equal(t, 20, done.QuestionCount)
	assert.Equal(t, "exports/imp-1.json", done.ExportKey)
	assert.NotNil(t, done.ProcessedAt)

	assert.ErrorIs(t, manager.MarkAsFailed(ctx, "imp-1", "late failure"), models.ErrInvalidImportStatus)

	_, err = manager.MarkAsProcessing(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrImportNotFound)
}

func TestImportStatusManager_RetryAfterFailure(t *testing.T) {
	setupTestDB(t)
	repo := repository.NewImportRepository()
	manager := NewImportStatusManager(repo, quietLogger())
	ctx := context.Background()

	require.NoError(t, manager.MarkAsUploaded(ctx, &models.ImportJob{ID: "imp-2", FileName: "a.txt", SourceKey: "sources/imp-2.txt"}))
	_, err := manager.MarkAsProcessing(ctx, "imp-2")
	require.NoError(t, err)
	require.NoError(t, manager.MarkAsFailed(ctx, "imp-2", "storage unavailable"))

	failed, err := repo.GetByID("imp-2")
	require.NoError(t, err)
	assert.Equal(t, "storage unavailable", failed.Error)

	retried, err := manager.MarkAsProcessing(ctx, "imp-2")
	require.NoError(t, err)
	assert.Empty(t, retried.Error)
}
