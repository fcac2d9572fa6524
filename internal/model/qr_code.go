package model

import "time"

// QRCode 员工取餐码，每人一个
type QRCode struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	QRCodeData string    `gorm:"column:qr_code_data;size:64;uniqueIndex;not null" json:"qr_code_data"`
	CreatedAt  time.Time `json:"created_at"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}
