package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

// WithTx returns a copy bound to the given transaction handle.
func (r *SubjectRepository) WithTx(tx *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: tx}
}

// UpsertByName returns the subject with the given name, creating it when
// absent. Concurrent importers of different exams can race on a new subject
// name; the conflict clause turns the losing insert into a no-op and the
// re-read settles on the winner's row. Existing rows are not modified.
func (r *SubjectRepository) UpsertByName(name string) (*model.Subject, error) {
	subject := model.Subject{Name: name}
	if err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&subject).Error; err != nil {
		return nil, err
	}
	if subject.ID != 0 {
		return &subject, nil
	}

	// The insert was skipped by the unique index on name.
	var existing model.Subject
	if err := r.DB.Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// SubjectWithExamCount carries the per-subject exam count for list views.
type SubjectWithExamCount struct {
	model.Subject
	ExamCount int64 `gorm:"column:exam_count"`
}

func (r *SubjectRepository) List(search string, page, limit int) ([]SubjectWithExamCount, int64, error) {
	query := r.DB.Model(&model.Subject{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit

	var rows []SubjectWithExamCount
	err := query.
		Select("subjects.*, (SELECT COUNT(*) FROM exams WHERE exams.subject_id = subjects.id) AS exam_count").
		Order("name asc").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// FindByIDWithExams loads a subject and its exams, newest sitting first.
func (r *SubjectRepository) FindByIDWithExams(id uint) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.
		Preload("Exams", func(db *gorm.DB) *gorm.DB {
			return db.Order("year desc")
		}).
		First(&subject, id).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}
