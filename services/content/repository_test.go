package content

import (
	"context"
	"testing"

	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db := testutils.SetupTestDB(t, Models()...)
	subject := sampleSubject()
	require.NoError(t, db.Create(subject).Error)
	require.NoError(t, db.Create(&Subject{ID: "subject-0", Code: "MTH100", Name: "Maths", Semester: 1}).Error)
	require.NoError(t, db.Create(&Subject{ID: "subject-2", Code: "CHE102", Name: "Chemistry", Semester: 2}).Error)

	paper := samplePaper()
	require.NoError(t, db.Create(paper).Error)
	older := samplePaper()
	older.ID = "paper-0"
	older.Year = "2022"
	older.Answers = nil
	require.NoError(t, db.Create(older).Error)

	return NewRepository(db, logging.NewNop())
}

func TestRepository_ListSubjects(t *testing.T) {
	repo := newTestRepository(t)

	subjects, err := repo.ListSubjects(context.Background())

	require.NoError(t, err)
	require.Len(t, subjects, 3)
	codes := []string{subjects[0].Code, subjects[1].Code, subjects[2].Code}
	assert.Equal(t, []string{"MTH100", "CHE102", "PHY101"}, codes, "semester first, then code")
	require.Len(t, subjects[2].ExamPattern.Groups, 1)
	assert.Equal(t, "Group A", subjects[2].ExamPattern.Groups[0].Label)
}

func TestRepository_SubjectByCode(t *testing.T) {
	repo := newTestRepository(t)

	subject, err := repo.SubjectByCode(context.Background(), "phy101")
	require.NoError(t, err)
	assert.Equal(t, "subject-1", subject.ID)

	_, err = repo.SubjectByCode(context.Background(), "CHE200")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestRepository_PapersForSubject(t *testing.T) {
	repo := newTestRepository(t)

	papers, err := repo.PapersForSubject(context.Background(), "subject-1")

	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "2024", papers[0].Year)
	assert.Equal(t, "2022", papers[1].Year)
	assert.Nil(t, papers[0].Questions)
	assert.Nil(t, papers[0].Answers)
}

func TestRepository_Paper(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	paper, err := repo.Paper(ctx, "subject-1", "paper-1")
	require.NoError(t, err)
	assert.Len(t, paper.Questions, 3)
	assert.Len(t, paper.Answers, 3)

	older, err := repo.Paper(ctx, "subject-1", "paper-0")
	require.NoError(t, err)
	assert.Nil(t, older.Answers)

	_, err = repo.Paper(ctx, "subject-0", "paper-1")
	assert.ErrorIs(t, err, ErrPaperNotFound)
}

func TestRepository_View(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	view, err := repo.View(ctx, "phy101", "paper-1", false)
	require.NoError(t, err)
	assert.False(t, view.SignedIn)
	assert.Len(t, view.Paper.Answers, 1)

	_, err = repo.View(ctx, "nope", "paper-1", true)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}
