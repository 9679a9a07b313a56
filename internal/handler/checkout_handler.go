package handler

import (
	"net/http"

	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CommitRequest struct {
	Address        string `json:"address"`
	ShippingMethod string `json:"shipping_method"`
	PaymentMethod  string `json:"payment_method"`
	Bank           string `json:"bank"`
	CardNumber     string `json:"card_number"`
	CardName       string `json:"card_name"`
	CardExpiry     string `json:"card_expiry"`
	CardCVV        string `json:"card_cvv"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/checkout")

	g.POST("", h.begin)
	g.POST("/:id/commit", h.commit)
	g.DELETE("/:id", h.abandon)
}

func (h *CheckoutHandler) begin(c echo.Context) error {
	out, err := h.uc.Begin(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) commit(c echo.Context) error {
	var req CommitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Commit(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), usecase.CommitForm{
		Address:        req.Address,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		Bank:           req.Bank,
		CardNumber:     req.CardNumber,
		CardName:       req.CardName,
		CardExpiry:     req.CardExpiry,
		CardCVV:        req.CardCVV,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) abandon(c echo.Context) error {
	if err := h.uc.Abandon(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "abandoned"})
}
