package payment

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testVNPayGateway() *VNPayGateway {
	g := NewVNPayGateway(VNPayConfig{
		TmnCode:    "TESTTMN",
		HashSecret: "test-secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://shop.example/payments/vnpay/return",
	})
	g.now = func() time.Time {
		return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	return g
}

func signedVNPayParams(secret string, params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out[vnpSignatureKey] = hmacSHA512(secret, sortedQuery(params))
	return out
}

func TestVNPayInitiate_BuildsSignedRedirect(t *testing.T) {
	g := testVNPayGateway()

	res, err := g.Initiate(context.Background(), InitiateRequest{
		TransactionCode: "PAY-20250315-001",
		Amount:          220000,
		OrderInfo:       "Payment for order ORD-20250315-0001",
		ClientIP:        "203.0.113.7",
	})

	assert.NoError(t, err)

	u, err := url.Parse(res.PaymentURL)
	assert.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "22000000", q.Get("vnp_Amount"))
	assert.Equal(t, "PAY-20250315-001", q.Get("vnp_TxnRef"))
	assert.Equal(t, "TESTTMN", q.Get("vnp_TmnCode"))
	assert.Equal(t, "20250315100000", q.Get("vnp_CreateDate"))
	assert.Equal(t, "20250315101500", q.Get("vnp_ExpireDate"))

	// The hash must recompute over everything but itself.
	signed := make(map[string]string)
	for k := range q {
		if k == vnpSignatureKey || k == vnpSignatureType {
			continue
		}
		signed[k] = q.Get(k)
	}
	assert.Equal(t, hmacSHA512("test-secret", sortedQuery(signed)), q.Get(vnpSignatureKey))
}

func TestVNPayVerify_SuccessfulCallback(t *testing.T) {
	g := testVNPayGateway()

	params := signedVNPayParams("test-secret", map[string]string{
		"vnp_TxnRef":            "PAY-20250315-001",
		"vnp_Amount":            "22000000",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14217869",
		"vnp_OrderInfo":         "Payment for order ORD-20250315-0001",
	})

	res, err := g.VerifyCallback(params)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "PAY-20250315-001", res.TransactionCode)
	assert.Equal(t, "14217869", res.TransactionID)
	assert.Equal(t, int64(220000), res.Amount)
	// The audit blob carries the full received set, signature included.
	assert.Contains(t, res.Raw, vnpSignatureKey+"="+params[vnpSignatureKey])
	assert.Contains(t, res.Raw, "vnp_TxnRef=PAY-20250315-001")
}

func TestVNPayVerify_DeclinedCallback(t *testing.T) {
	g := testVNPayGateway()

	params := signedVNPayParams("test-secret", map[string]string{
		"vnp_TxnRef":       "PAY-20250315-001",
		"vnp_Amount":       "22000000",
		"vnp_ResponseCode": "24",
	})

	res, err := g.VerifyCallback(params)

	// A declined payment is a valid callback, just not a successful one.
	assert.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "24", res.Code)
}

func TestVNPayVerify_TamperedParams(t *testing.T) {
	g := testVNPayGateway()

	params := signedVNPayParams("test-secret", map[string]string{
		"vnp_TxnRef":       "PAY-20250315-001",
		"vnp_Amount":       "22000000",
		"vnp_ResponseCode": "00",
	})
	params["vnp_Amount"] = "100"

	_, err := g.VerifyCallback(params)

	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestVNPayVerify_WrongSecret(t *testing.T) {
	g := testVNPayGateway()

	params := signedVNPayParams("other-secret", map[string]string{
		"vnp_TxnRef":       "PAY-20250315-001",
		"vnp_Amount":       "22000000",
		"vnp_ResponseCode": "00",
	})

	_, err := g.VerifyCallback(params)

	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestVNPayVerify_MissingSignature(t *testing.T) {
	g := testVNPayGateway()

	_, err := g.VerifyCallback(map[string]string{
		"vnp_TxnRef": "PAY-20250315-001",
	})

	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestSortedQuery_SkipsEmptyAndSorts(t *testing.T) {
	q := sortedQuery(map[string]string{
		"b":     "2",
		"a":     "1",
		"empty": "",
		"c":     "x y",
	})

	assert.Equal(t, "a=1&b=2&c=x+y", q)
}
