package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	vnpVersion       = "2.1.0"
	vnpCommandPay    = "pay"
	vnpSuccessCode   = "00"
	vnpExpireWindow  = 15 * time.Minute
	vnpSignatureKey  = "vnp_SecureHash"
	vnpSignatureType = "vnp_SecureHashType"
)

type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

// VNPayGateway builds signed redirect URLs and verifies signed
// callbacks. VNPay signs the sorted, URL-encoded query with
// HMAC-SHA512 and sends amounts multiplied by 100.
type VNPayGateway struct {
	cfg VNPayConfig
	now func() time.Time
}

func NewVNPayGateway(cfg VNPayConfig) *VNPayGateway {
	return &VNPayGateway{cfg: cfg, now: time.Now}
}

func (g *VNPayGateway) Provider() string { return "vnpay" }

func (g *VNPayGateway) Initiate(_ context.Context, req InitiateRequest) (InitiateResult, error) {
	if req.TransactionCode == "" || req.Amount <= 0 {
		return InitiateResult{}, fmt.Errorf("vnpay: invalid initiate request")
	}

	now := g.now()
	params := map[string]string{
		"vnp_Version":    vnpVersion,
		"vnp_Command":    vnpCommandPay,
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     req.TransactionCode,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_ExpireDate": now.Add(vnpExpireWindow).Format("20060102150405"),
	}

	query := sortedQuery(params)
	secureHash := hmacSHA512(g.cfg.HashSecret, query)

	return InitiateResult{
		PaymentURL: g.cfg.PayURL + "?" + query + "&" + vnpSignatureKey + "=" + secureHash,
	}, nil
}

func (g *VNPayGateway) VerifyCallback(params map[string]string) (CallbackResult, error) {
	received := params[vnpSignatureKey]
	if received == "" {
		return CallbackResult{}, ErrInvalidSignature
	}

	// Recompute over everything except the signature fields.
	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == vnpSignatureKey || k == vnpSignatureType {
			continue
		}
		signed[k] = v
	}
	query := sortedQuery(signed)
	if !signatureEqual(hmacSHA512(g.cfg.HashSecret, query), received) {
		return CallbackResult{}, ErrInvalidSignature
	}

	rawAmount, err := strconv.ParseInt(params["vnp_Amount"], 10, 64)
	if err != nil {
		return CallbackResult{}, fmt.Errorf("vnpay: bad amount %q", params["vnp_Amount"])
	}

	respCode := params["vnp_ResponseCode"]
	txnStatus := params["vnp_TransactionStatus"]
	success := respCode == vnpSuccessCode && (txnStatus == "" || txnStatus == vnpSuccessCode)

	return CallbackResult{
		Success:         success,
		TransactionCode: params["vnp_TxnRef"],
		TransactionID:   params["vnp_TransactionNo"],
		Amount:          rawAmount / 100,
		Code:            respCode,
		Message:         params["vnp_OrderInfo"],
		Raw:             sortedQuery(params),
	}, nil
}
