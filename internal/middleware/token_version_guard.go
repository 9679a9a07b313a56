package middleware

import (
	"errors"
	"net/http"

	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/infra/token"
	"github.com/qstina/relove-website/internal/logging"
	"github.com/qstina/relove-website/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionが一致するか確認し、呼び出し元のIdentityを決める。
// roleはトークンではなくDBの値を使う。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(CtxClaimsKey).(*token.Claims)
			if !ok || claims == nil {
				return next(c)
			}

			//匿名はDBに行が無い
			if claims.Anonymous {
				c.Set(CtxIdentityKey, &model.Identity{UserID: claims.Subject, Anonymous: true})
				return next(c)
			}

			//DBから最新のuserを取得する
			ctx := c.Request().Context()
			user, err := userRepo.FindByID(ctx, claims.Subject)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && user == nil) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			//DB障害を「ログアウト」に見せない
			if err != nil {
				logging.FromContext(ctx).Error("token version lookup failed", "user_id", claims.Subject, "error", err)
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != claims.TokenVersion {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxIdentityKey, &model.Identity{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			})
			return next(c)
		}
	}
}

// IdentityFrom は未ログインならnilを返す
func IdentityFrom(c echo.Context) *model.Identity {
	id, _ := c.Get(CtxIdentityKey).(*model.Identity)
	return id
}
