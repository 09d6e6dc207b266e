package repository

import (
	"context"
	"errors"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type VoucherGormRepository struct {
	db *gorm.DB
}

func NewVoucherGormRepository(db *gorm.DB) *VoucherGormRepository {
	return &VoucherGormRepository{db: db}
}

func (r *VoucherGormRepository) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Voucher{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

// The usage-limit ceiling is part of the WHERE clause, so two concurrent
// consumers cannot both take the last slot.
func (r *VoucherGormRepository) IncrementUsedCount(ctx context.Context, voucherID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Voucher{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", voucherID).
		Update("used_count", gorm.Expr("used_count + 1"))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *VoucherGormRepository) DecrementUsedCount(ctx context.Context, voucherID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Voucher{}).
		Where("id = ? AND used_count > 0", voucherID).
		Update("used_count", gorm.Expr("used_count - 1"))

	// RowsAffected 0 just means the counter was already at the floor.
	return res.Error
}

type VoucherUsageGormRepository struct {
	db *gorm.DB
}

func NewVoucherUsageGormRepository(db *gorm.DB) *VoucherUsageGormRepository {
	return &VoucherUsageGormRepository{db: db}
}

func (r *VoucherUsageGormRepository) Create(ctx context.Context, usage model.VoucherUsage) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&usage).Error; err != nil {
		return 0, err
	}
	return usage.ID, nil
}

func (r *VoucherUsageGormRepository) HasActiveUsage(ctx context.Context, voucherID int64, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.VoucherUsage{}).
		Where("voucher_id = ? AND user_id = ? AND is_refunded = false", voucherID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *VoucherUsageGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.VoucherUsage, error) {
	var u model.VoucherUsage
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.VoucherUsage{}, repo.ErrNotFound
	}
	if err != nil {
		return model.VoucherUsage{}, err
	}
	return u, nil
}

func (r *VoucherUsageGormRepository) MarkRefunded(ctx context.Context, usageID int64, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.VoucherUsage{}).
		Where("id = ? AND is_refunded = false", usageID).
		Updates(map[string]any{
			"is_refunded":   true,
			"refunded_at":   at,
			"refund_reason": reason,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
