package handler

import (
	"net/http"
	"strconv"

	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 空なら def。数値でなければ ok=false
func queryInt(c echo.Context, key string, def int) (int, bool) {
	v := c.QueryParam(key)
	if v == "" {
		return def, true
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// /items の公開APIと /seller/items
type ItemHandler struct {
	uc *usecase.ItemUsecase
}

// DI
func NewItemHandler(uc *usecase.ItemUsecase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

type ItemRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Condition   int             `json:"condition"`
	Description string          `json:"description"`
}

func (r ItemRequest) input() usecase.ItemInput {
	return usecase.ItemInput{
		Name:        r.Name,
		Price:       r.Price,
		Image:       r.Image,
		Category:    r.Category,
		Condition:   r.Condition,
		Description: r.Description,
	}
}

func (h *ItemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/items", h.list)
	e.GET("/items/:id", h.detail)

	seller := e.Group("/seller/items")
	seller.GET("", h.listMine)
	seller.POST("", h.create)
	seller.PUT("/:id", h.update)
	seller.DELETE("/:id", h.delete)
}

// GET /items?category=&q=&include_sold=&limit=&offset=
func (h *ItemHandler) list(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	includeSold := false
	if v := c.QueryParam("include_sold"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid include_sold"})
		}
		includeSold = b
	}

	out, err := h.uc.Browse(c.Request().Context(), middleware.IdentityFrom(c), usecase.BrowseInput{
		Category:    c.QueryParam("category"),
		Q:           c.QueryParam("q"),
		IncludeSold: includeSold,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) detail(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) listMine(c echo.Context) error {
	out, err := h.uc.ListMine(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) create(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), middleware.IdentityFrom(c), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ItemHandler) update(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
