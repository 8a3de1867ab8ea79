package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/handler"
	"marketplace/internal/metrics"
	"marketplace/internal/middleware"
	"marketplace/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// DBの疎通確認（/healthz）
type Pinger func(ctx context.Context) error

// New はミドルウェアとルートを登録したechoを返す
func New(log *zap.Logger, m *metrics.Metrics, jwtSecret string, ping Pinger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID(log))
	e.Use(middleware.AccessLog(m))

	e.GET("/healthz", func(c echo.Context) error {
		if ping != nil {
			if err := ping(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	RegisterRoutes(e, jwtSecret, h)
	return e
}

// ルート外のエラー（404/405など）も {"code","error"} で返す
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := apperr.CodeInternal
		switch he.Code {
		case http.StatusNotFound:
			code = apperr.CodeNotFound
		case http.StatusUnauthorized:
			code = apperr.CodeUnauthorized
		case http.StatusForbidden:
			code = apperr.CodeForbidden
		case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
			code = apperr.CodeValidation
		}
		_ = c.JSON(he.Code, handler.ErrorResponse{Code: code, Error: http.StatusText(he.Code)})
		return
	}
	_ = c.JSON(http.StatusInternalServerError, handler.ErrorResponse{Code: apperr.CodeInternal, Error: "internal error"})
}

// ctxが終わったらgracefulに止める
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("http server shutting down")
	return e.Shutdown(shutdownCtx)
}
