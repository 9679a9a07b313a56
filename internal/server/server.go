package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/qstina/relove-website/internal/metrics"
	"github.com/qstina/relove-website/internal/middleware"
	"github.com/qstina/relove-website/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Options struct {
	Logger   *slog.Logger
	Tokens   middleware.TokenParser
	Users    repository.UserRepository
	Metrics  *metrics.Registry
	Gatherer prometheus.Gatherer
	// 空なら全オリジン許可
	AllowOrigins []string
}

// New は全ミドルウェアとルートを積んだechoを返す
func New(opts Options, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	if len(opts.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: opts.AllowOrigins}))
	} else {
		e.Use(echomw.CORS())
	}
	e.Use(opts.Metrics.Middleware())

	//呼び出し元の解決（トークンが無ければゲスト）
	e.Use(middleware.AuthJWT(opts.Tokens))
	e.Use(middleware.TokenVersionGuard(opts.Users))

	RegisterRoutes(e, h, opts.Gatherer)
	return e
}

// Start はctxがキャンセルされるまで待ち、その後graceful shutdownする
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
