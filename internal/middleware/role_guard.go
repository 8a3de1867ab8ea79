package middleware

import (
	"net/http"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AuthJWTの後ろで使う。ctxのCallerのroleが一致しなければ403。
// 最終的な判定はusecase側でも行う。
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := authz.FromContext(c.Request().Context())
			if caller.IsAnonymous() {
				return c.JSON(http.StatusUnauthorized, errorJSON(apperr.CodeUnauthorized, "unauthorized"))
			}
			for _, r := range roles {
				if caller.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, errorJSON(apperr.CodeForbidden, "forbidden"))
		}
	}
}

type errorResponse struct {
	Code  apperr.Code `json:"code"`
	Error string      `json:"error"`
}

func errorJSON(code apperr.Code, msg string) errorResponse {
	return errorResponse{Code: code, Error: msg}
}
