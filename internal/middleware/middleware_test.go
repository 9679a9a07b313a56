package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/infra/token"
	"github.com/qstina/relove-website/internal/logging"
	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type whoResponse struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Anonymous bool   `json:"anonymous"`
	Guest     bool   `json:"guest"`
}

// UserRepository モック（使うメソッドだけ実装）
type MockUserRepo struct {
	repository.UserRepository
	mock.Mock
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func mustIssue(t *testing.T, sub string, anonymous bool, tv int) string {
	t.Helper()
	raw, _, err := token.NewJWT(testSecret, time.Minute).Issue(sub, "", anonymous, tv)
	require.NoError(t, err)
	return raw
}

func newEcho(userRepo repository.UserRepository) *echo.Echo {
	e := echo.New()
	e.GET("/who", func(c echo.Context) error {
		id := middleware.IdentityFrom(c)
		if id == nil {
			return c.JSON(http.StatusOK, whoResponse{Guest: true})
		}
		return c.JSON(http.StatusOK, whoResponse{UserID: id.UserID, Role: string(id.Role), Anonymous: id.Anonymous})
	}, middleware.AuthJWT(token.NewJWT(testSecret, time.Minute)), middleware.TokenVersionGuard(userRepo))
	return e
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeWho(t *testing.T, rec *httptest.ResponseRecorder) whoResponse {
	t.Helper()
	var r whoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// ヘッダなし => ゲストとして通る
func TestMiddleware_NoHeader_Guest(t *testing.T) {
	userRepo := new(MockUserRepo)
	rec := runRequest(t, newEcho(userRepo), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeWho(t, rec).Guest)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMiddleware_AuthJWT_Unauthorized(t *testing.T) {
	other, _, err := token.NewJWT("wrong-secret", time.Minute).Issue("u-1", "", false, 0)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"bad scheme", "Token abc.def.ghi"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := runRequest(t, newEcho(new(MockUserRepo)), tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// 匿名トークンはDBを見ない
func TestMiddleware_Anonymous(t *testing.T) {
	userRepo := new(MockUserRepo)
	rec := runRequest(t, newEcho(userRepo), "Bearer "+mustIssue(t, "anon-1", true, 0))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeWho(t, rec)
	assert.Equal(t, "anon-1", body.UserID)
	assert.True(t, body.Anonymous)
	assert.Empty(t, body.Role)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// tv不一致 => 401
func TestMiddleware_TokenVersionGuard_Mismatch(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("FindByID", mock.Anything, "u-1").Return(&model.User{
		ID: "u-1", Email: "amy@test.com", Role: model.RoleBuyer, TokenVersion: 1,
	}, nil)

	rec := runRequest(t, newEcho(userRepo), "Bearer "+mustIssue(t, "u-1", false, 0))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
	userRepo.AssertExpectations(t)
}

func TestMiddleware_TokenVersionGuard_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("FindByID", mock.Anything, "u-9").Return(nil, repository.ErrNotFound)

	rec := runRequest(t, newEcho(userRepo), "Bearer "+mustIssue(t, "u-9", false, 0))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

// DBが落ちているときは401ではなく500
func TestMiddleware_TokenVersionGuard_StoreError(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("FindByID", mock.Anything, "u-1").Return(nil, errors.New("db down"))

	rec := runRequest(t, newEcho(userRepo), "Bearer "+mustIssue(t, "u-1", false, 0))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeMWError(t, rec).Error)
	userRepo.AssertExpectations(t)
}

// roleはDBの値を使う
func TestMiddleware_TokenVersionGuard_RoleFromStore(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("FindByID", mock.Anything, "u-1").Return(&model.User{
		ID: "u-1", Email: "amy@test.com", Role: model.RoleSeller, TokenVersion: 3,
	}, nil)

	rec := runRequest(t, newEcho(userRepo), "Bearer "+mustIssue(t, "u-1", false, 3))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeWho(t, rec)
	assert.Equal(t, "u-1", body.UserID)
	assert.Equal(t, "Seller", body.Role)
	assert.False(t, body.Anonymous)
	userRepo.AssertExpectations(t)
}

func TestRequestLogger_AttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(base))
	e.GET("/ping", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside handler")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rid := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), `"msg":"inside handler"`)
	assert.Contains(t, buf.String(), `"request_id":"`+rid+`"`)
	assert.Contains(t, buf.String(), `"path":"/ping"`)

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
