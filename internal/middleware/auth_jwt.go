package middleware

import (
	"net/http"
	"strings"

	"github.com/qstina/relove-website/internal/infra/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxClaimsKey   = "claims"   // *token.Claims
	CtxIdentityKey = "identity" // *model.Identity
)

// TokenParser はbearerトークンを検証してclaimsを返す
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
// ヘッダが無ければ未ログインとしてそのまま通す。壊れたトークンは401。
func AuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return next(c)
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する
			claims, err := parser.Parse(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxClaimsKey, claims)
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
