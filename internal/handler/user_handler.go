package handler

import (
	"net/http"
	"time"

	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/repository"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /profile と 管理者の一覧系
type UserHandler struct {
	users  *usecase.UserUsecase
	orders *usecase.OrderUsecase
	audit  *usecase.AuditUsecase
}

func NewUserHandler(users *usecase.UserUsecase, orders *usecase.OrderUsecase, audit *usecase.AuditUsecase) *UserHandler {
	return &UserHandler{users: users, orders: orders, audit: audit}
}

type ProfileRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Course   string `json:"course"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	State    string `json:"state"`
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/profile", h.getProfile)
	e.PUT("/profile", h.updateProfile)

	admin := e.Group("/admin")
	admin.GET("/users", h.listUsers)
	admin.GET("/orders", h.listOrders)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *UserHandler) getProfile(c echo.Context) error {
	out, err := h.users.GetProfile(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.users.UpdateProfile(c.Request().Context(), middleware.IdentityFrom(c), usecase.ProfileInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Course:   req.Course,
		City:     req.City,
		Postcode: req.Postcode,
		State:    req.State,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) listUsers(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	out, err := h.users.ListUsers(c.Request().Context(), middleware.IdentityFrom(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/orders?status=&limit=&offset=
func (h *UserHandler) listOrders(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	out, err := h.orders.ListAll(c.Request().Context(), middleware.IdentityFrom(c), repository.OrderListFilter{
		Status: c.QueryParam("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/audit-logs?actor=&action=&resource_type=&resource_id=&since=&until=&limit=&offset=
// since/until は RFC3339
func (h *UserHandler) listAuditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}
	since, ok := queryTime(c, "since")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid since"})
	}
	until, ok := queryTime(c, "until")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid until"})
	}

	out, err := h.audit.List(c.Request().Context(), middleware.IdentityFrom(c), usecase.AuditQuery{
		ActorUserID:  c.QueryParam("actor"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Since:        since,
		Until:        until,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func queryTime(c echo.Context, key string) (*time.Time, bool) {
	v := c.QueryParam(key)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &t, true
}
