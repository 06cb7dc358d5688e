package repository

import (
	"context"
	"errors"

	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

// WithTx returns a copy bound to the given transaction handle.
func (r *ExamRepository) WithTx(tx *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: tx}
}

// FindByKeyForUpdate looks up the exam for one (subject, year, examType) key
// with its questions. On MySQL the row is locked so concurrent ingestions of
// the same key serialize behind the caller's transaction; the context bounds
// the lock wait. Returns (nil, nil) when no exam exists.
func (r *ExamRepository) FindByKeyForUpdate(ctx context.Context, subjectID uint, year, examType int) (*model.Exam, error) {
	query := r.DB.WithContext(ctx).Preload("Questions")
	if r.DB.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var exam model.Exam
	err := query.
		Where("subject_id = ? AND year = ? AND exam_type = ?", subjectID, year, examType).
		First(&exam).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// FindByIDWithQuestions loads an exam with subject, questions in
// questionNumber order and choices in choiceNumber order.
func (r *ExamRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.
		Preload("Subject").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number asc")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choice_number asc")
		}).
		First(&exam, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// QuestionsForGrading returns the exam's questions in ascending
// questionNumber order; only the columns grading needs are selected.
func (r *ExamRepository) QuestionsForGrading(examID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.
		Select("id", "exam_id", "question_number", "correct_answer").
		Where("exam_id = ?", examID).
		Order("question_number asc").
		Find(&questions).Error
	return questions, err
}

func (r *ExamRepository) ListBySubject(subjectID uint) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.
		Preload("Subject").
		Where("subject_id = ?", subjectID).
		Order("year desc").
		Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) CreateExam(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

// CreateQuestions inserts the rows in input order; gorm writes the assigned
// IDs back into the slice elements.
func (r *ExamRepository) CreateQuestions(questions []model.Question) error {
	return r.DB.Create(&questions).Error
}

func (r *ExamRepository) CreateChoices(choices []model.Choice) error {
	return r.DB.CreateInBatches(&choices, 500).Error
}

// DeleteExam removes an exam and its question/choice rows. Children are
// deleted explicitly so recovery does not depend on DB-level cascade being
// enabled on the connection.
func (r *ExamRepository) DeleteExam(examID uint) error {
	var questionIDs []uint
	if err := r.DB.Model(&model.Question{}).Where("exam_id = ?", examID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := r.DB.Where("question_id IN ?", questionIDs).Delete(&model.Choice{}).Error; err != nil {
			return err
		}
	}
	if err := r.DB.Where("exam_id = ?", examID).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.Exam{}, examID).Error
}
