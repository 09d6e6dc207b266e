package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

type VoucherRepository interface {
	// Codes are stored uppercase; callers normalize before lookup.
	FindByCode(ctx context.Context, code string) (model.Voucher, error)

	// Increments used_count only while under the usage limit; reports
	// whether it did. Unlimited vouchers always succeed.
	IncrementUsedCount(ctx context.Context, voucherID int64) (bool, error)

	// Decrements used_count, floored at zero.
	DecrementUsedCount(ctx context.Context, voucherID int64) error
}

type VoucherUsageRepository interface {
	Create(ctx context.Context, usage model.VoucherUsage) (int64, error)

	// Whether the user holds a non-refunded usage of this voucher.
	HasActiveUsage(ctx context.Context, voucherID int64, userID int64) (bool, error)

	FindByOrderID(ctx context.Context, orderID int64) (model.VoucherUsage, error)
	MarkRefunded(ctx context.Context, usageID int64, reason string, at time.Time) error
}
