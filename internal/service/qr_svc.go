package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/database"
)

// QRCodeService 员工取餐码
type QRCodeService struct {
	codes repository.QRCodeRepository
}

// NewQRCodeService 创建取餐码服务
func NewQRCodeService(codes repository.QRCodeRepository) *QRCodeService {
	return &QRCodeService{codes: codes}
}

// GetOrCreate 首次请求时生成，之后始终返回同一个
func (s *QRCodeService) GetOrCreate(ctx context.Context, userID int64) (*model.QRCode, error) {
	code, err := s.codes.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询取餐码失败: %w", err)
	}
	if code != nil {
		return code, nil
	}

	code = &model.QRCode{
		UserID:     userID,
		QRCodeData: uuid.NewString(),
	}
	if err := s.codes.Create(ctx, code); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("生成取餐码失败: %w", err)
		}
		// 并发请求已生成
		existing, getErr := s.codes.GetByUserID(ctx, userID)
		if getErr != nil {
			return nil, fmt.Errorf("查询取餐码失败: %w", getErr)
		}
		if existing == nil {
			return nil, fmt.Errorf("生成取餐码失败: %w", err)
		}
		return existing, nil
	}
	return code, nil
}

// Resolve 扫码：根据取餐码找到员工
func (s *QRCodeService) Resolve(ctx context.Context, data string) (*model.QRCode, error) {
	code, err := s.codes.GetByData(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("查询取餐码失败: %w", err)
	}
	if code == nil {
		return nil, &NotFoundError{Resource: "qr_code"}
	}
	return code, nil
}
