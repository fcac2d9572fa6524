package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"canteen_order_v1/internal/model"
)

// QRCodeRepository 取餐码仓库接口
type QRCodeRepository interface {
	Create(ctx context.Context, code *model.QRCode) error
	GetByUserID(ctx context.Context, userID int64) (*model.QRCode, error)
	GetByData(ctx context.Context, data string) (*model.QRCode, error)
}

type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository 创建取餐码仓库
func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, code *model.QRCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *qrCodeRepository) GetByUserID(ctx context.Context, userID int64) (*model.QRCode, error) {
	var code model.QRCode
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &code, err
}

func (r *qrCodeRepository) GetByData(ctx context.Context, data string) (*model.QRCode, error) {
	var code model.QRCode
	err := r.db.WithContext(ctx).Where("qr_code_data = ?", data).First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &code, err
}
