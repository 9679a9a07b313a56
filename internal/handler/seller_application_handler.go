package handler

import (
	"net/http"

	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SellerApplicationHandler struct {
	uc *usecase.SellerApplicationUsecase
}

func NewSellerApplicationHandler(uc *usecase.SellerApplicationUsecase) *SellerApplicationHandler {
	return &SellerApplicationHandler{uc: uc}
}

type ApplicationRequest struct {
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AccountNumber string `json:"account_number"`
	Description   string `json:"description"`
}

func (h *SellerApplicationHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/seller-applications")
	g.POST("", h.submit)
	g.GET("/mine", h.mine)

	//審査（Adminのみ。権限はusecase側で判定）
	admin := e.Group("/admin/seller-applications")
	admin.GET("", h.list)
	admin.POST("/:id/approve", h.approve)
	admin.POST("/:id/reject", h.reject)
}

func (h *SellerApplicationHandler) submit(c echo.Context) error {
	var req ApplicationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Submit(c.Request().Context(), middleware.IdentityFrom(c), usecase.SubmitApplicationInput{
		Phone:         req.Phone,
		Address:       req.Address,
		AccountNumber: req.AccountNumber,
		Description:   req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SellerApplicationHandler) mine(c echo.Context) error {
	out, err := h.uc.Mine(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/seller-applications?status=pending
func (h *SellerApplicationHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), middleware.IdentityFrom(c), c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerApplicationHandler) approve(c echo.Context) error {
	out, err := h.uc.Approve(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerApplicationHandler) reject(c echo.Context) error {
	out, err := h.uc.Reject(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
