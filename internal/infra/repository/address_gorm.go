package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	err := r.db.WithContext(ctx).Where("id = ?", addressID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}

type ShippingProviderGormRepository struct {
	db *gorm.DB
}

func NewShippingProviderGormRepository(db *gorm.DB) *ShippingProviderGormRepository {
	return &ShippingProviderGormRepository{db: db}
}

func (r *ShippingProviderGormRepository) FindByID(ctx context.Context, providerID int64) (model.ShippingProvider, error) {
	var p model.ShippingProvider
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = true", providerID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ShippingProvider{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ShippingProvider{}, err
	}
	return p, nil
}
