package model

import "time"

// Question numbers come verbatim from the crawled page; they are unique
// within an exam but not required to be contiguous or to start at 1.
type Question struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ExamID           uint      `gorm:"index;not null" json:"examId"`
	QuestionNumber   int       `gorm:"not null" json:"questionNumber"`
	QuestionText     string    `gorm:"type:text" json:"questionText"`
	QuestionImageURL *string   `gorm:"size:512" json:"questionImageUrl"`
	CorrectAnswer    int       `gorm:"not null;default:1" json:"correctAnswer"`
	CreatedAt        time.Time `json:"createdAt"`
	Choices          []Choice  `gorm:"constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
