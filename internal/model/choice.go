package model

type Choice struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID     uint    `gorm:"index;not null" json:"questionId"`
	ChoiceNumber   int     `gorm:"not null" json:"choiceNumber"`
	ChoiceText     string  `gorm:"type:text" json:"choiceText"`
	ChoiceImageURL *string `gorm:"size:512" json:"choiceImageUrl"`
}

func (Choice) TableName() string {
	return "choices"
}
