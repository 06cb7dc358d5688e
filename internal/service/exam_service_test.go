package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newExamService(db *gorm.DB) *ExamService {
	return NewExamService(repository.NewExamRepository(db), nil, testConfig())
}

// seedExam stores one exam whose question answers are given in question
// number order and returns it with questions loaded.
func seedExam(t *testing.T, db *gorm.DB, answers []int) *model.Exam {
	t.Helper()

	subject := model.Subject{Name: "간호학"}
	require.NoError(t, db.Create(&subject).Error)

	exam := model.Exam{
		SubjectID:      subject.ID,
		Year:           2024,
		ExamType:       model.ExamTypeSummer,
		Title:          "간호학 2024학년도 하계학기",
		TotalQuestions: len(answers),
	}
	require.NoError(t, db.Create(&exam).Error)

	for i, answer := range answers {
		question := model.Question{
			ExamID:         exam.ID,
			QuestionNumber: i + 1,
			QuestionText:   "문제",
			CorrectAnswer:  answer,
		}
		require.NoError(t, db.Create(&question).Error)
		for c := 1; c <= 4; c++ {
			require.NoError(t, db.Create(&model.Choice{
				QuestionID:   question.ID,
				ChoiceNumber: c,
				ChoiceText:   "보기",
			}).Error)
		}
		exam.Questions = append(exam.Questions, question)
	}
	return &exam
}

func jsonUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func submitted(questionID uint, selected int) SubmittedAnswer {
	return SubmittedAnswer{
		QuestionID:     FlexInt{Value: int(questionID), Valid: true},
		SelectedAnswer: FlexInt{Value: selected, Valid: true},
	}
}

func TestSubmitExamScoring(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{3, 1, 2})

	answers := []SubmittedAnswer{
		submitted(exam.Questions[0].ID, 3),
		submitted(exam.Questions[1].ID, 1),
		submitted(exam.Questions[2].ID, 4),
	}

	result, err := svc.SubmitExam(context.Background(), exam.ID, answers)
	require.NoError(t, err)

	assert.Equal(t, exam.ID, result.ExamID)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectCount)
	// round(2/3 * 100) = 67
	assert.Equal(t, 67, result.Score)

	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].IsCorrect)
	assert.True(t, result.Results[1].IsCorrect)
	assert.False(t, result.Results[2].IsCorrect)
	require.NotNil(t, result.Results[2].UserAnswer)
	assert.Equal(t, 4, *result.Results[2].UserAnswer)
	assert.Equal(t, 2, result.Results[2].CorrectAnswer)
}

func TestSubmitExamMissingAnswer(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{3, 1})

	result, err := svc.SubmitExam(context.Background(), exam.ID, []SubmittedAnswer{
		submitted(exam.Questions[0].ID, 3),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 50, result.Score)
	assert.Nil(t, result.Results[1].UserAnswer)
	assert.False(t, result.Results[1].IsCorrect)
}

func TestSubmitExamEmptySubmission(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{3, 1, 2})

	result, err := svc.SubmitExam(context.Background(), exam.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 0, result.Score)
	assert.Len(t, result.Results, 3)
}

func TestSubmitExamStringCoercion(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{2})

	payload := []byte(`[{"questionId": "` + jsonUint(exam.Questions[0].ID) + `", "selectedAnswer": "2"}]`)
	var answers []SubmittedAnswer
	require.NoError(t, json.Unmarshal(payload, &answers))

	result, err := svc.SubmitExam(context.Background(), exam.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
}

func TestSubmitExamMalformedPairsDropped(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{2, 3})

	payload := []byte(`[
		{"questionId": ` + jsonUint(exam.Questions[0].ID) + `, "selectedAnswer": 1.5},
		{"questionId": "abc", "selectedAnswer": 3},
		{"questionId": ` + jsonUint(exam.Questions[1].ID) + `, "selectedAnswer": 3}
	]`)
	var answers []SubmittedAnswer
	require.NoError(t, json.Unmarshal(payload, &answers))

	result, err := svc.SubmitExam(context.Background(), exam.ID, answers)
	require.NoError(t, err)

	// 정수로 강제 변환되지 않는 쌍은 조용히 버려진다
	assert.Equal(t, 1, result.CorrectCount)
	assert.Nil(t, result.Results[0].UserAnswer)
	assert.True(t, result.Results[1].IsCorrect)
}

func TestSubmitExamZeroQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)

	// 문제 행 없이 남은 시험도 채점은 0점으로 끝나야 한다
	subject := model.Subject{Name: "간호학"}
	require.NoError(t, db.Create(&subject).Error)
	exam := model.Exam{
		SubjectID: subject.ID,
		Year:      2024,
		ExamType:  model.ExamTypeSummer,
		Title:     "간호학 2024학년도 하계학기",
	}
	require.NoError(t, db.Create(&exam).Error)

	result, err := svc.SubmitExam(context.Background(), exam.ID, []SubmittedAnswer{
		submitted(1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Results)
}

func TestSubmitExamNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)

	_, err := svc.SubmitExam(context.Background(), 999, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrExamNotFound))
}

func TestGetExamQuestionsHidesAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{3, 1})

	resp, err := svc.GetExamQuestions(context.Background(), exam.ID, false)
	require.NoError(t, err)

	assert.Equal(t, "간호학", resp.Exam.Subject)
	require.Len(t, resp.Questions, 2)
	for _, q := range resp.Questions {
		assert.Nil(t, q.CorrectAnswer)
		require.Len(t, q.Choices, 4)
		for _, c := range q.Choices {
			assert.Nil(t, c.IsCorrect)
		}
	}
}

func TestGetExamQuestionsStudyMode(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	exam := seedExam(t, db, []int{3})

	resp, err := svc.GetExamQuestions(context.Background(), exam.ID, true)
	require.NoError(t, err)

	require.Len(t, resp.Questions, 1)
	q := resp.Questions[0]
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 3, *q.CorrectAnswer)
	require.NotNil(t, q.Choices[2].IsCorrect)
	assert.True(t, *q.Choices[2].IsCorrect)
	require.NotNil(t, q.Choices[0].IsCorrect)
	assert.False(t, *q.Choices[0].IsCorrect)
}

func TestGetExamQuestionsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)

	_, err := svc.GetExamQuestions(context.Background(), 999, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrExamNotFound))
}

func TestFlexIntUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		value int
		valid bool
	}{
		{"number", `7`, 7, true},
		{"numeric string", `"7"`, 7, true},
		{"padded string", `" 7 "`, 7, true},
		{"float", `1.5`, 0, false},
		{"word", `"abc"`, 0, false},
		{"null", `null`, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexInt
			require.NoError(t, json.Unmarshal([]byte(tc.input), &f))
			assert.Equal(t, tc.valid, f.Valid)
			if tc.valid {
				assert.Equal(t, tc.value, f.Value)
			}
		})
	}
}
