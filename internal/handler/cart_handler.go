package handler

import (
	"net/http"

	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ItemID string `json:"item_id"`
}

type SelectCartRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// /cart, /cart/{itemId} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clear)
	g.PUT("/selection", h.selectItems)
	g.DELETE("/:itemId", h.deleteItem)
}

// 開くたびに照合して売れた物を落とす
func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.Reconcile(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ItemID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "item_id is required"})
	}

	out, err := h.uc.Add(c.Request().Context(), middleware.IdentityFrom(c), req.ItemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) selectItems(c echo.Context) error {
	var req SelectCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Select(c.Request().Context(), middleware.IdentityFrom(c), req.ItemIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	out, err := h.uc.Remove(c.Request().Context(), middleware.IdentityFrom(c), c.Param("itemId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	if err := h.uc.Clear(c.Request().Context(), middleware.IdentityFrom(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cleared"})
}
