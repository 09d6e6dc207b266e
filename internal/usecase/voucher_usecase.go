package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

type VoucherUsecase struct {
	vouchers repo.VoucherRepository
	usages   repo.VoucherUsageRepository
	now      func() time.Time
}

func NewVoucherUsecase(vouchers repo.VoucherRepository, usages repo.VoucherUsageRepository) *VoucherUsecase {
	return &VoucherUsecase{vouchers: vouchers, usages: usages, now: time.Now}
}

// VoucherEvaluation is the read-only result of applying a voucher to an
// order context. Consumption happens elsewhere, at order commit.
type VoucherEvaluation struct {
	Voucher        model.Voucher
	DiscountAmount int64
	FreeShipping   bool
}

// Evaluate runs the applicability checks in a fixed order so each
// rejection carries its own reason. It is side-effect-free and
// idempotent: calling it never touches used_count.
func (u *VoucherUsecase) Evaluate(ctx context.Context, code string, orderAmount int64, userID int64, categoryIDs []int64, bookIDs []int64) (VoucherEvaluation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return VoucherEvaluation{}, errInvalidRequest("voucher code required")
	}
	if orderAmount < 0 {
		return VoucherEvaluation{}, errInvalidRequest("invalid order amount")
	}

	v, err := u.vouchers.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return VoucherEvaluation{}, errNotFound("voucher not found")
	}
	if err != nil {
		return VoucherEvaluation{}, errDB()
	}

	if !v.IsUsable(u.now()) {
		return VoucherEvaluation{}, errVoucherInvalid("voucher expired or inactive")
	}

	if orderAmount < v.MinOrderAmount {
		return VoucherEvaluation{}, errVoucherNotApplicable("order amount below voucher minimum")
	}

	if len(v.UserIDs) > 0 && !containsID(v.UserIDs, userID) {
		return VoucherEvaluation{}, errVoucherNotApplicable("voucher not available for this user")
	}
	if len(v.CategoryIDs) > 0 && !intersects(v.CategoryIDs, categoryIDs) {
		return VoucherEvaluation{}, errVoucherNotApplicable("voucher not applicable to these categories")
	}
	if len(v.BookIDs) > 0 && !intersects(v.BookIDs, bookIDs) {
		return VoucherEvaluation{}, errVoucherNotApplicable("voucher not applicable to these books")
	}

	if v.UsageLimit != nil {
		used, err := u.usages.HasActiveUsage(ctx, v.ID, userID)
		if err != nil {
			return VoucherEvaluation{}, errDB()
		}
		if used {
			return VoucherEvaluation{}, errVoucherAlreadyUsed()
		}
	}

	discount, freeShipping := computeDiscount(v, orderAmount)

	return VoucherEvaluation{
		Voucher:        v,
		DiscountAmount: discount,
		FreeShipping:   freeShipping,
	}, nil
}

func computeDiscount(v model.Voucher, orderAmount int64) (int64, bool) {
	var discount int64
	switch v.Type {
	case model.VoucherTypePercentage:
		discount = orderAmount * v.Value / 100
		if v.MaxDiscountAmount != nil && discount > *v.MaxDiscountAmount {
			discount = *v.MaxDiscountAmount
		}
	case model.VoucherTypeFixedAmount:
		discount = v.Value
		if v.MaxDiscountAmount != nil && discount > *v.MaxDiscountAmount {
			discount = *v.MaxDiscountAmount
		}
	case model.VoucherTypeFreeShipping:
		// The item-total discount stays zero; the caller waives the
		// shipping fee instead.
		return 0, true
	}

	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount, false
}

type CheckVoucherOutput struct {
	Applicable     bool   `json:"applicable"`
	DiscountAmount int64  `json:"discount_amount"`
	FreeShipping   bool   `json:"free_shipping"`
	Reason         string `json:"reason,omitempty"`
}

// Check is the user-facing probe. A voucher that cannot be applied is a
// normal answer, not an error; only malformed input errors out.
func (u *VoucherUsecase) Check(ctx context.Context, code string, orderAmount int64, userID int64, categoryIDs []int64, bookIDs []int64) (CheckVoucherOutput, error) {
	eval, err := u.Evaluate(ctx, code, orderAmount, userID, categoryIDs, bookIDs)
	if err != nil {
		if he, ok := AsHTTPError(err); ok {
			switch he.Code {
			case CodeNotFound, CodeVoucherInvalid, CodeVoucherNotApplicable, CodeVoucherAlreadyUsed:
				return CheckVoucherOutput{Applicable: false, Reason: he.Message}, nil
			}
		}
		return CheckVoucherOutput{}, err
	}

	return CheckVoucherOutput{
		Applicable:     true,
		DiscountAmount: eval.DiscountAmount,
		FreeShipping:   eval.FreeShipping,
	}, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func intersects(a []int64, b []int64) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
