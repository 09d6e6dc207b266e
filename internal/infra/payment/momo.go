package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const momoSuccessCode = "0"

type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
	RequestType string // normally "captureWallet"
}

// MomoGateway signs a fixed-field-order raw string with HMAC-SHA256 and
// POSTs a JSON create request; the provider answers with a payUrl.
type MomoGateway struct {
	cfg    MomoConfig
	client *http.Client
}

func NewMomoGateway(cfg MomoConfig) *MomoGateway {
	if cfg.RequestType == "" {
		cfg.RequestType = "captureWallet"
	}
	return &MomoGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *MomoGateway) Provider() string { return "momo" }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

func (g *MomoGateway) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	if req.TransactionCode == "" || req.Amount <= 0 {
		return InitiateResult{}, fmt.Errorf("momo: invalid initiate request")
	}

	requestID := uuid.NewString()

	// Field order is fixed by the provider, not lexical.
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.cfg.AccessKey, req.Amount, "", g.cfg.IPNURL, req.TransactionCode,
		req.OrderInfo, g.cfg.PartnerCode, g.cfg.RedirectURL, requestID, g.cfg.RequestType,
	)

	body := momoCreateRequest{
		PartnerCode: g.cfg.PartnerCode,
		RequestID:   requestID,
		Amount:      req.Amount,
		OrderID:     req.TransactionCode,
		OrderInfo:   req.OrderInfo,
		RedirectURL: g.cfg.RedirectURL,
		IPNURL:      g.cfg.IPNURL,
		RequestType: g.cfg.RequestType,
		ExtraData:   "",
		Lang:        "vi",
		Signature:   hmacSHA256(g.cfg.SecretKey, raw),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return InitiateResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return InitiateResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return InitiateResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return InitiateResult{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return InitiateResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if out.ResultCode != 0 || out.PayURL == "" {
		return InitiateResult{}, fmt.Errorf("%w: resultCode=%d message=%s", ErrUpstream, out.ResultCode, out.Message)
	}

	return InitiateResult{PaymentURL: out.PayURL}, nil
}

func (g *MomoGateway) VerifyCallback(params map[string]string) (CallbackResult, error) {
	received := params["signature"]
	if received == "" {
		return CallbackResult{}, ErrInvalidSignature
	}

	// IPN signature field order, fixed by the provider.
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		g.cfg.AccessKey, params["amount"], params["extraData"], params["message"],
		params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
		params["payType"], params["requestId"], params["responseTime"], params["resultCode"],
		params["transId"],
	)
	if !signatureEqual(hmacSHA256(g.cfg.SecretKey, raw), received) {
		return CallbackResult{}, ErrInvalidSignature
	}

	amount, err := strconv.ParseInt(params["amount"], 10, 64)
	if err != nil {
		return CallbackResult{}, fmt.Errorf("momo: bad amount %q", params["amount"])
	}

	resultCode := params["resultCode"]

	return CallbackResult{
		Success:         resultCode == momoSuccessCode,
		TransactionCode: params["orderId"],
		TransactionID:   params["transId"],
		Amount:          amount,
		Code:            resultCode,
		Message:         params["message"],
		Raw:             sortedQuery(params),
	}, nil
}
