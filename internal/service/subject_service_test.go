package service

import (
	"context"
	"errors"
	"testing"

	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSubjectService(db *gorm.DB) *SubjectService {
	return NewSubjectService(repository.NewSubjectRepository(db), repository.NewExamRepository(db))
}

func seedSubjects(t *testing.T, db *gorm.DB) {
	t.Helper()
	svc := newQuestionService(t, db)

	for _, md := range []ExamMetadata{
		{Subject: "간호학", Year: 2023, Semester: "하계"},
		{Subject: "간호학", Year: 2024, Semester: "하계"},
		{Subject: "사회복지학개론", Year: 2024, Semester: "동계"},
	} {
		_, err := svc.SaveExam(context.Background(), extractedWith(md, 2), false)
		require.NoError(t, err)
	}
}

func TestSubjectList(t *testing.T) {
	db := newTestDB(t)
	seedSubjects(t, db)
	svc := newSubjectService(db)

	items, total, err := svc.List("", 1, 20)
	require.NoError(t, err)

	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	// 이름 오름차순
	assert.Equal(t, "간호학", items[0].Name)
	assert.EqualValues(t, 2, items[0].ExamCount)
	assert.Equal(t, "사회복지학개론", items[1].Name)
	assert.EqualValues(t, 1, items[1].ExamCount)
	assert.NotEmpty(t, items[0].CreatedAt)
}

func TestSubjectListSearch(t *testing.T) {
	db := newTestDB(t)
	seedSubjects(t, db)
	svc := newSubjectService(db)

	items, total, err := svc.List("간호", 1, 20)
	require.NoError(t, err)

	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "간호학", items[0].Name)
}

func TestSubjectExamsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	seedSubjects(t, db)
	svc := newSubjectService(db)

	items, _, err := svc.List("간호", 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)

	exams, err := svc.ExamsBySubject(items[0].ID)
	require.NoError(t, err)

	require.Len(t, exams, 2)
	assert.Equal(t, 2024, exams[0].Year)
	assert.Equal(t, 2023, exams[1].Year)
}

func TestSubjectDetailNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newSubjectService(db)

	_, err := svc.Detail(999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrSubjectNotFound))

	_, err = svc.ExamsBySubject(999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrSubjectNotFound))
}
