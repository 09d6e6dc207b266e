package repository

import (
	"context"

	"bookstore/internal/domain/model"

	"gorm.io/gorm"
)

type UserBookGormRepository struct {
	db *gorm.DB
}

func NewUserBookGormRepository(db *gorm.DB) *UserBookGormRepository {
	return &UserBookGormRepository{db: db}
}

func (r *UserBookGormRepository) Create(ctx context.Context, ub model.UserBook) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&ub).Error; err != nil {
		return 0, err
	}
	return ub.ID, nil
}

func (r *UserBookGormRepository) ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserBook{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserBookGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.UserBook, error) {
	var grants []model.UserBook
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *UserBookGormRepository) DeactivateByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Model(&model.UserBook{}).
		Where("order_id = ?", orderID).
		Update("is_active", false).Error
}
