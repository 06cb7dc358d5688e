package model

import "time"

// Subject is created lazily on the first import that references its name.
// The core never deletes subjects.
type Subject struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Exams     []Exam    `gorm:"constraint:OnDelete:CASCADE" json:"exams,omitempty"`
}

func (Subject) TableName() string {
	return "subjects"
}
