package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const examQuestionsCacheTTL = 10 * time.Minute

func examQuestionsCacheKey(examID uint, includeAnswers bool) string {
	return fmt.Sprintf("exam:questions:%d:%t", examID, includeAnswers)
}

// FlexInt accepts a JSON number or a numeric string. A value that does not
// coerce to an integer leaves Valid false; grading drops such pairs silently
// instead of erroring.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		f.Value = int(v)
		f.Valid = float64(f.Value) == v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			f.Value = n
			f.Valid = true
		}
	}
	return nil
}

// SubmittedAnswer is one entry of the canonical answer payload shape.
type SubmittedAnswer struct {
	QuestionID     FlexInt `json:"questionId"`
	SelectedAnswer FlexInt `json:"selectedAnswer"`
}

type AnswerResult struct {
	QuestionID     uint `json:"questionId"`
	QuestionNumber int  `json:"questionNumber"`
	UserAnswer     *int `json:"userAnswer"`
	CorrectAnswer  int  `json:"correctAnswer"`
	IsCorrect      bool `json:"isCorrect"`
}

type GradeResult struct {
	ExamID         uint           `json:"examId"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectCount   int            `json:"correctCount"`
	Score          int            `json:"score"`
	Results        []AnswerResult `json:"results"`
}

// View types for the CBT question read; answers appear only in study mode.
type ChoiceView struct {
	Number    int     `json:"number"`
	Text      string  `json:"text"`
	ImageURL  *string `json:"imageUrl"`
	IsCorrect *bool   `json:"isCorrect,omitempty"`
}

type QuestionView struct {
	ID            uint         `json:"id"`
	Number        int          `json:"number"`
	Text          string       `json:"text"`
	ImageURL      *string      `json:"imageUrl"`
	CorrectAnswer *int         `json:"correctAnswer,omitempty"`
	Choices       []ChoiceView `json:"choices"`
}

type ExamSummaryView struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	TotalQuestions int    `json:"totalQuestions"`
}

type ExamQuestionsResponse struct {
	Exam      ExamSummaryView `json:"exam"`
	Questions []QuestionView  `json:"questions"`
}

// ExamService reads stored exams and grades submissions. It performs no
// writes, so it cannot corrupt exam state.
type ExamService struct {
	ExamRepo *repository.ExamRepository
	Redis    *redis.Client
	Config   *config.Config
}

func NewExamService(examRepo *repository.ExamRepository, rdb *redis.Client, cfg *config.Config) *ExamService {
	return &ExamService{ExamRepo: examRepo, Redis: rdb, Config: cfg}
}

// GetExamQuestions returns the exam in a frontend-friendly shape, read
// through the Redis cache when one is configured.
func (s *ExamService) GetExamQuestions(ctx context.Context, examID uint, includeAnswers bool) (*ExamQuestionsResponse, error) {
	cacheKey := examQuestionsCacheKey(examID, includeAnswers)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp ExamQuestionsResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	exam, err := s.ExamRepo.FindByIDWithQuestions(examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, util.ErrExamNotFound
	}

	resp := &ExamQuestionsResponse{
		Exam: ExamSummaryView{
			ID:             exam.ID,
			Title:          exam.Title,
			TotalQuestions: exam.TotalQuestions,
		},
	}
	if exam.Subject != nil {
		resp.Exam.Subject = exam.Subject.Name
	}

	resp.Questions = make([]QuestionView, len(exam.Questions))
	for i, q := range exam.Questions {
		view := QuestionView{
			ID:       q.ID,
			Number:   q.QuestionNumber,
			Text:     q.QuestionText,
			ImageURL: q.QuestionImageURL,
			Choices:  make([]ChoiceView, len(q.Choices)),
		}
		if includeAnswers {
			correct := q.CorrectAnswer
			view.CorrectAnswer = &correct
		}
		for j, c := range q.Choices {
			choice := ChoiceView{
				Number:   c.ChoiceNumber,
				Text:     c.ChoiceText,
				ImageURL: c.ChoiceImageURL,
			}
			if includeAnswers {
				isCorrect := c.ChoiceNumber == q.CorrectAnswer
				choice.IsCorrect = &isCorrect
			}
			view.Choices[j] = choice
		}
		resp.Questions[i] = view
	}

	if s.Redis != nil {
		if encoded, err := json.Marshal(resp); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, encoded, examQuestionsCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache exam questions", zap.Uint("examId", examID), zap.Error(err))
			}
		}
	}

	return resp, nil
}

// SubmitExam grades a submission against the stored answer key. Pairs whose
// fields failed coercion are already invalid and simply do not take part in
// the lookup; questions without a submitted answer score incorrect.
func (s *ExamService) SubmitExam(ctx context.Context, examID uint, answers []SubmittedAnswer) (*GradeResult, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, util.ErrExamNotFound
	}

	questions, err := s.ExamRepo.QuestionsForGrading(examID)
	if err != nil {
		return nil, err
	}

	answerMap := make(map[uint]int, len(answers))
	for _, a := range answers {
		if !a.QuestionID.Valid || !a.SelectedAnswer.Valid {
			continue
		}
		if a.QuestionID.Value < 0 {
			continue
		}
		answerMap[uint(a.QuestionID.Value)] = a.SelectedAnswer.Value
	}

	correctCount := 0
	results := make([]AnswerResult, len(questions))
	for i, q := range questions {
		var userAnswer *int
		isCorrect := false
		if selected, ok := answerMap[q.ID]; ok {
			selected := selected
			userAnswer = &selected
			isCorrect = selected == q.CorrectAnswer
		}
		if isCorrect {
			correctCount++
		}
		results[i] = AnswerResult{
			QuestionID:     q.ID,
			QuestionNumber: q.QuestionNumber,
			UserAnswer:     userAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      isCorrect,
		}
	}

	// Guard the zero-question exam instead of dividing by zero.
	score := 0
	if len(questions) > 0 {
		score = int(math.Round(float64(correctCount) / float64(len(questions)) * 100))
	}

	return &GradeResult{
		ExamID:         examID,
		TotalQuestions: len(questions),
		CorrectCount:   correctCount,
		Score:          score,
		Results:        results,
	}, nil
}
