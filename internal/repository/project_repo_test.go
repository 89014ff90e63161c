package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

func projectTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return setupTestDB(t, &models.User{}, &models.Project{}, &models.Submission{})
}

func TestProjectRepositoryCreatePersistsManualRelease(t *testing.T) {
	db := projectTestDB(t)
	repo := NewProjectRepository(db)

	manual := models.Project{
		Title:      "Manual Release",
		Deadline:   time.Now().Add(48 * time.Hour),
		MaxScore:   100,
		AutoUnlock: false,
	}
	require.NoError(t, repo.Create(context.Background(), &manual))

	stored, err := repo.GetByID(context.Background(), manual.ID)
	require.NoError(t, err)
	require.False(t, stored.AutoUnlock, "an admin's manual-release choice must survive the insert")
	require.False(t, stored.IsUnlocked)
}

func TestProjectRepositoryAutoUnlockCandidates(t *testing.T) {
	db := projectTestDB(t)
	repo := NewProjectRepository(db)
	now := time.Now()

	due := models.Project{Title: "Due", Deadline: now.Add(48 * time.Hour), MaxScore: 100, AutoUnlock: true}
	require.NoError(t, repo.Create(context.Background(), &due))

	manual := models.Project{Title: "Manual", Deadline: now.Add(48 * time.Hour), MaxScore: 100, AutoUnlock: false}
	require.NoError(t, repo.Create(context.Background(), &manual))

	futureOpen := now.Add(24 * time.Hour)
	notYet := models.Project{Title: "Not Yet", OpenAt: &futureOpen, Deadline: now.Add(72 * time.Hour), MaxScore: 100, AutoUnlock: true}
	require.NoError(t, repo.Create(context.Background(), &notYet))

	candidates, err := repo.ListAutoUnlockCandidates(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "Due", candidates[0].Title)
}

func TestProjectRepositoryCompletedProjectIDs(t *testing.T) {
	db := projectTestDB(t)
	repo := NewProjectRepository(db)

	user := models.User{Name: "Ada", Email: "ada-completed@example.com"}
	require.NoError(t, db.Create(&user).Error)

	done := models.Project{Title: "Done", Deadline: time.Now().Add(time.Hour), MaxScore: 100, AutoUnlock: true}
	require.NoError(t, repo.Create(context.Background(), &done))
	open := models.Project{Title: "Open", Deadline: time.Now().Add(time.Hour), MaxScore: 100, AutoUnlock: true}
	require.NoError(t, repo.Create(context.Background(), &open))

	score := 90.0
	require.NoError(t, db.Create(&models.Submission{
		ProjectID: done.ID, UserID: user.ID, SubmittedAt: time.Now(),
		ContentType: models.SubmissionTypeCode, CodeContent: "a",
		Status: models.SubmissionStatusAccepted, FinalScore: &score,
	}).Error)
	require.NoError(t, db.Create(&models.Submission{
		ProjectID: open.ID, UserID: user.ID, SubmittedAt: time.Now(),
		ContentType: models.SubmissionTypeCode, CodeContent: "b",
		Status: models.SubmissionStatusSubmitted,
	}).Error)

	ids, err := repo.CompletedProjectIDs(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{done.ID}, ids)
}
