package handler

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	"marketplace/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Code  apperr.Code `json:"code"`
	Error string      `json:"error"`
}

// usecaseのHTTPErrorをそのまま返す。それ以外は500。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := apperr.As(err); ok {
		if he.Code == apperr.CodeInternal {
			logger.FromContext(c.Request().Context()).Error("internal error", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: apperr.CodeInternal, Error: "internal error"})
		}
		return c.JSON(he.Status, ErrorResponse{Code: he.Code, Error: he.Message})
	}

	//500
	logger.FromContext(c.Request().Context()).Error("unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: apperr.CodeInternal, Error: "internal error"})
}

// AuthJWTが載せたCaller
func callerOf(c echo.Context) authz.Caller {
	return authz.FromContext(c.Request().Context())
}

// Bind + Validate
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid body")
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// "PAID" でも "2" でも受け付ける。空は0（全て）。
func parseStatus(v string) (model.OrderStatus, error) {
	if v == "" {
		return 0, nil
	}
	if s, ok := model.ParseOrderStatus(v); ok {
		return s, nil
	}
	if n, err := strconv.Atoi(v); err == nil && model.OrderStatus(n).Valid() {
		return model.OrderStatus(n), nil
	}
	return 0, apperr.Validation("invalid status")
}

// RFC3339 か YYYY-MM-DD
func parseTime(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, nil
	}
	return nil, apperr.Validation("invalid " + name)
}
