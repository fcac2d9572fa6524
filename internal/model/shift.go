package model

// Shift 班次（供餐时段）
type Shift struct {
	BaseModel
	Name    string `gorm:"size:50;not null" json:"name"`
	TimeOn  string `gorm:"size:5" json:"time_on"`  // 开餐时间 HH:MM
	StartAt string `gorm:"size:5" json:"start_at"` // 班次开始 HH:MM
	EndAt   string `gorm:"size:5" json:"end_at"`   // 班次结束 HH:MM
}

func (Shift) TableName() string {
	return "shifts"
}
