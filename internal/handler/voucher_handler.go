package handler

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type VoucherHandler struct {
	uc *usecase.VoucherUsecase
}

func NewVoucherHandler(uc *usecase.VoucherUsecase) *VoucherHandler {
	return &VoucherHandler{uc: uc}
}

type VoucherCheckRequest struct {
	Code        string  `json:"code"`
	OrderAmount int64   `json:"order_amount"`
	CategoryIDs []int64 `json:"category_ids"`
	BookIDs     []int64 `json:"book_ids"`
}

func (h *VoucherHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/vouchers")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/check", h.check)
}

func (h *VoucherHandler) check(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req VoucherCheckRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Check(c.Request().Context(), req.Code, req.OrderAmount, userID, req.CategoryIDs, req.BookIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
