package model

import (
	"strings"
	"time"
)

// Exam types: 1/2 are term finals, 3 is the summer session, 4 is winter.
const (
	ExamTypeFirstTermFinal  = 1
	ExamTypeSecondTermFinal = 2
	ExamTypeSummer          = 3
	ExamTypeWinter          = 4
)

// semesterExamTypes is checked in order; the first token contained in the
// semester string wins.
var semesterExamTypes = []struct {
	token    string
	examType int
}{
	{"하계", ExamTypeSummer},
	{"동계", ExamTypeWinter},
	{"1학기", ExamTypeFirstTermFinal},
	{"2학기", ExamTypeSecondTermFinal},
}

// ExamTypeForSemester maps a scraped semester string to an exam type,
// defaulting to the summer session when nothing matches.
func ExamTypeForSemester(semester string) int {
	for _, m := range semesterExamTypes {
		if strings.Contains(semester, m.token) {
			return m.examType
		}
	}
	return ExamTypeSummer
}

// Exam is one imported sitting, logically unique per (subject, year, type).
// Uniqueness is policed in the ingestion transaction rather than by a DB
// constraint so that a partial import can exist transiently.
type Exam struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID      uint       `gorm:"index:idx_exams_key;not null" json:"subjectId"`
	Year           int        `gorm:"index:idx_exams_key;not null" json:"year"`
	ExamType       int        `gorm:"index:idx_exams_key;not null" json:"examType"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	TotalQuestions int        `gorm:"not null" json:"totalQuestions"`
	CreatedAt      time.Time  `json:"createdAt"`
	Subject        *Subject   `json:"subject,omitempty"`
	Questions      []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}
