package handler

import (
	"net/http"

	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 購入者の注文参照と、出品者の発送操作
type OrderHandler struct {
	orders      *usecase.OrderUsecase
	fulfillment *usecase.FulfillmentUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase, fulfillment *usecase.FulfillmentUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, fulfillment: fulfillment}
}

type ShipRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/orders")
	g.GET("", h.list)
	g.GET("/:id", h.detail)

	seller := e.Group("/seller/orders")
	seller.GET("", h.listForSeller)
	seller.POST("/:id/ship", h.ship)
	seller.POST("/:id/deliver", h.deliver)
	seller.POST("/:id/cancel", h.cancel)
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.orders.ListForBuyer(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.orders.Get(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 自分の出品が含まれる注文（明細は自分の分だけ）
func (h *OrderHandler) listForSeller(c echo.Context) error {
	out, err := h.orders.ListForSeller(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) ship(c echo.Context) error {
	var req ShipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.fulfillment.Ship(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), req.TrackingNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) deliver(c echo.Context) error {
	out, err := h.fulfillment.Deliver(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.fulfillment.Cancel(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
