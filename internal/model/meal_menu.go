package model

import "time"

// 菜单审核状态
const (
	MenuStatusPending  = "pending"
	MenuStatusApproved = "approved"
	MenuStatusRejected = "rejected"
)

// MealMenu 供应商某一天的菜单
type MealMenu struct {
	BaseModel
	VendorCateringID int64     `gorm:"index;not null" json:"vendor_catering_id"`
	Name             string    `gorm:"size:150;not null" json:"name"`
	Descriptions     string    `gorm:"type:text" json:"descriptions"`
	NutritionFacts   string    `gorm:"type:text" json:"nutrition_facts"`
	ForDate          time.Time `gorm:"type:date;index;not null" json:"for_date"`
	Status           string    `gorm:"size:16;index;default:'pending'" json:"status"`
	StatusNotes      string    `gorm:"type:text" json:"status_notes"`

	Vendor *VendorCatering `gorm:"foreignKey:VendorCateringID" json:"vendor,omitempty"`
}

func (MealMenu) TableName() string {
	return "meal_menus"
}

// IsApproved 是否已审核通过
func (m *MealMenu) IsApproved() bool {
	return m.Status == MenuStatusApproved
}

// IsValidMenuStatus 校验菜单状态值
func IsValidMenuStatus(status string) bool {
	switch status {
	case MenuStatusPending, MenuStatusApproved, MenuStatusRejected:
		return true
	}
	return false
}
