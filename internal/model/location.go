package model

// Location 厂区 / 办公地点
type Location struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Address string `gorm:"size:255" json:"address"`
}

func (Location) TableName() string {
	return "locations"
}

// Department 部门
type Department struct {
	BaseModel
	Name       string `gorm:"size:100;not null" json:"name"`
	LocationID int64  `gorm:"index;not null" json:"location_id"`

	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}
