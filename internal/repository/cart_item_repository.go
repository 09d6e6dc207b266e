package repository

import "context"

type CartItemRepository interface {
	// Bulk-removes the purchased lines after checkout.
	RemoveItems(ctx context.Context, userID int64, bookIDs []int64) error
}
