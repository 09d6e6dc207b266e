package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

// Address book lives outside this core; checkout only needs lookup for
// the ownership check.
type AddressRepository interface {
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
}

type ShippingProviderRepository interface {
	FindByID(ctx context.Context, providerID int64) (model.ShippingProvider, error)
}
