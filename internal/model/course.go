package model

// Course 课程，模块的归属上下文
type Course struct {
	BaseModel
	AccountID uint   `gorm:"index;not null" json:"accountId"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Code      string `gorm:"size:64" json:"code"`
	Published bool   `gorm:"default:false" json:"published"`
}

func (Course) TableName() string {
	return "courses"
}
