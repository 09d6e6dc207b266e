package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc       *usecase.PaymentUsecase
	statusUC *usecase.OrderStatusUsecase
	feURL    string
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, statusUC *usecase.OrderStatusUsecase, feURL string) *PaymentHandler {
	return &PaymentHandler{uc: uc, statusUC: statusUC, feURL: feURL}
}

type InitiatePaymentRequest struct {
	OrderID     int64  `json:"order_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payments")
	g.POST("/initiate", h.initiate, middleware.AuthJWT(cfg))

	// Provider callbacks are unauthenticated; the HMAC signature is the
	// authenticity check.
	g.GET("/vnpay/return", h.vnpayReturn)
	g.GET("/vnpay/ipn", h.vnpayIPN)
	g.GET("/momo/return", h.momoReturn)
	g.POST("/momo/ipn", h.momoIPN)
}

func (h *PaymentHandler) initiate(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.InitiatePayment(c.Request().Context(), userID, usecase.InitiatePaymentInput{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Description: req.Description,
		ClientIP:    c.RealIP(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Browser redirect back from VNPay. Verification is shared with the
// IPN; only the rendering differs.
func (h *PaymentHandler) vnpayReturn(c echo.Context) error {
	params := queryToMap(c)
	out, err := h.uc.HandleCallback(c.Request().Context(), "vnpay", params)
	return h.renderReturn(c, out, err)
}

// Server-to-server IPN from VNPay; answers in VNPay's ack format.
func (h *PaymentHandler) vnpayIPN(c echo.Context) error {
	params := queryToMap(c)
	out, err := h.uc.HandleCallback(c.Request().Context(), "vnpay", params)
	if err != nil {
		if usecase.HasCode(err, usecase.CodeInvalidSignature) {
			return c.JSON(http.StatusOK, map[string]string{"RspCode": "97", "Message": "Invalid signature"})
		}
		if usecase.HasCode(err, usecase.CodeNotFound) {
			return c.JSON(http.StatusOK, map[string]string{"RspCode": "01", "Message": "Order not found"})
		}
		return c.JSON(http.StatusOK, map[string]string{"RspCode": "99", "Message": "Unknown error"})
	}

	if _, err := h.statusUC.ApplyPaymentResult(c.Request().Context(), out.OrderID, out.Success, out.TransactionID); err != nil {
		return c.JSON(http.StatusOK, map[string]string{"RspCode": "99", "Message": "Unknown error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"RspCode": "00", "Message": "Confirm Success"})
}

func (h *PaymentHandler) momoReturn(c echo.Context) error {
	params := queryToMap(c)
	out, err := h.uc.HandleCallback(c.Request().Context(), "momo", params)
	return h.renderReturn(c, out, err)
}

func (h *PaymentHandler) momoIPN(c echo.Context) error {
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.HandleCallback(c.Request().Context(), "momo", stringifyParams(body))
	if err != nil {
		return writeError(c, err)
	}

	if _, err := h.statusUC.ApplyPaymentResult(c.Request().Context(), out.OrderID, out.Success, out.TransactionID); err != nil {
		return writeError(c, err)
	}

	// Momo expects 204 as the IPN ack.
	return c.NoContent(http.StatusNoContent)
}

// renderReturn drives the order transition and then sends the shopper
// back to the frontend (or answers JSON when no frontend is configured).
func (h *PaymentHandler) renderReturn(c echo.Context, out usecase.CallbackOutput, err error) error {
	if err != nil {
		if h.feURL != "" {
			return c.Redirect(http.StatusFound, h.feURL+"/payment/result?success=false")
		}
		return writeError(c, err)
	}

	if _, applyErr := h.statusUC.ApplyPaymentResult(c.Request().Context(), out.OrderID, out.Success, out.TransactionID); applyErr != nil {
		if h.feURL != "" {
			return c.Redirect(http.StatusFound, h.feURL+"/payment/result?success=false")
		}
		return writeError(c, applyErr)
	}

	if h.feURL != "" {
		return c.Redirect(http.StatusFound, fmt.Sprintf(
			"%s/payment/result?success=%t&order_id=%d", h.feURL, out.Success, out.OrderID))
	}
	return c.JSON(http.StatusOK, out)
}

func queryToMap(c echo.Context) map[string]string {
	params := make(map[string]string)
	for k, vs := range c.QueryParams() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}

// Momo IPNs carry numbers in JSON; signatures are computed over their
// decimal string form.
func stringifyParams(body map[string]any) map[string]string {
	params := make(map[string]string, len(body))
	for k, v := range body {
		switch t := v.(type) {
		case string:
			params[k] = t
		case float64:
			params[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			params[k] = strconv.FormatBool(t)
		case nil:
			params[k] = ""
		default:
			params[k] = fmt.Sprint(t)
		}
	}
	return params
}
