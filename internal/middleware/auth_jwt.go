package middleware

import (
	"errors"
	"net/http"
	"strings"

	"app/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserUUIDKey = "user_uuid" // string
	CtxUsernameKey = "username"  // string
)

// bearerAuth用のaccess token検証ミドルウェア。
// 公開鍵しか使わないので秘密鍵を持たないインスタンスでも動く。
func AuthJWT(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusForbidden, errorJSON("missing bearer token"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusForbidden, errorJSON("missing bearer token"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusForbidden, errorJSON("missing bearer token"))
			}

			claims, err := codec.VerifyAccess(rawToken)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
				}
				return c.JSON(http.StatusForbidden, errorJSON("forbidden resource"))
			}

			c.Set(CtxUserUUIDKey, claims.UUID)
			c.Set(CtxUsernameKey, claims.Username)

			return next(c)
		}
	}
}

func errorJSON(msg string) map[string]string {
	return map[string]string{"message": msg}
}
