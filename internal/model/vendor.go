package model

// 供应商状态
const (
	VendorStatusActive   = "active"
	VendorStatusInactive = "inactive"
)

// VendorCatering 供应商经营单元：一个地点 + 一个班次
type VendorCatering struct {
	BaseModel
	UserID     int64  `gorm:"index;not null" json:"user_id"` // 供应商账号
	Name       string `gorm:"size:100;not null" json:"name"`
	LocationID int64  `gorm:"index;not null" json:"location_id"`
	ShiftID    int64  `gorm:"index;not null" json:"shift_id"`
	Address    string `gorm:"size:255" json:"address"`
	Status     string `gorm:"size:20;default:'active'" json:"status"`

	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Shift    *Shift    `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
}

func (VendorCatering) TableName() string {
	return "vendor_caterings"
}
