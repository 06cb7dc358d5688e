package service

import (
	"errors"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"

	"gorm.io/gorm"
)

type SubjectListItem struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ExamCount int64  `json:"examCount"`
	CreatedAt string `json:"createdAt"`
}

type SubjectDetail struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Exams []ExamListItem `json:"exams"`
}

type ExamListItem struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Year           int    `json:"year"`
	ExamType       int    `json:"examType"`
	TotalQuestions int    `json:"totalQuestions"`
	CreatedAt      string `json:"createdAt"`
}

// SubjectService serves the subject browse views.
type SubjectService struct {
	SubjectRepo *repository.SubjectRepository
	ExamRepo    *repository.ExamRepository
}

func NewSubjectService(subjectRepo *repository.SubjectRepository, examRepo *repository.ExamRepository) *SubjectService {
	return &SubjectService{SubjectRepo: subjectRepo, ExamRepo: examRepo}
}

func (s *SubjectService) List(search string, page, limit int) ([]SubjectListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, total, err := s.SubjectRepo.List(search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]SubjectListItem, len(rows))
	for i, row := range rows {
		items[i] = SubjectListItem{
			ID:        row.ID,
			Name:      row.Name,
			ExamCount: row.ExamCount,
			CreatedAt: util.ToKSTString(row.CreatedAt),
		}
	}
	return items, total, nil
}

func (s *SubjectService) Detail(id uint) (*SubjectDetail, error) {
	subject, err := s.SubjectRepo.FindByIDWithExams(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubjectNotFound
	}
	if err != nil {
		return nil, err
	}

	return &SubjectDetail{
		ID:    subject.ID,
		Name:  subject.Name,
		Exams: toExamListItems(subject.Exams),
	}, nil
}

// ExamsBySubject lists a subject's exams newest-first, erroring when the
// subject itself does not exist so callers can distinguish "no exams yet".
func (s *SubjectService) ExamsBySubject(id uint) ([]ExamListItem, error) {
	if _, err := s.SubjectRepo.FindByIDWithExams(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}

	exams, err := s.ExamRepo.ListBySubject(id)
	if err != nil {
		return nil, err
	}
	return toExamListItems(exams), nil
}

func toExamListItems(exams []model.Exam) []ExamListItem {
	items := make([]ExamListItem, len(exams))
	for i, e := range exams {
		items[i] = ExamListItem{
			ID:             e.ID,
			Title:          e.Title,
			Year:           e.Year,
			ExamType:       e.ExamType,
			TotalQuestions: e.TotalQuestions,
			CreatedAt:      util.ToKSTString(e.CreatedAt),
		}
	}
	return items
}
