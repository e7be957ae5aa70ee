package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/metrics"
	"github.com/keene2/meme-server/internal/okx"
	"github.com/keene2/meme-server/internal/swap"
	"github.com/keene2/meme-server/internal/watcher"
)

// Config holds the API listener settings.
type Config struct {
	ListenAddress string
}

// Server wires the HTTP surface to the trading provider, the market
// proxy and the slot watcher. All state is read-only after construction
// and safe to share across request goroutines.
type Server struct {
	echo    *echo.Echo
	cfg     Config
	trading swap.Provider
	market  *okx.MarketService
	watcher *watcher.Watcher
	logger  *logrus.Logger
}

func NewServer(
	cfg Config,
	trading swap.Provider,
	market *okx.MarketService,
	w *watcher.Watcher,
	logger *logrus.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.HTTPMiddleware())

	s := &Server{
		echo:    e,
		cfg:     cfg,
		trading: trading,
		market:  market,
		watcher: w,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.getHealth)

	api := s.echo.Group("/api")
	api.GET("/quote", s.getQuote)
	api.POST("/build-transaction", s.postBuildTransaction)
	api.POST("/submit-transaction", s.postSubmitTransaction)

	dex := api.Group("/dex")
	dex.GET("/chains", s.getSupportedChains)
	dex.GET("/price", s.getTokenPrice)
	dex.POST("/prices", s.postBatchTokenPrices)
	dex.GET("/kline", s.getKline)
	dex.GET("/solana/popular-prices", s.getPopularPrices)
	dex.GET("/balance/total-value", s.getTotalValue)
}

func (s *Server) Start() error {
	s.logger.Infof("api server listening on %s", s.cfg.ListenAddress)
	return s.echo.Start(s.cfg.ListenAddress)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
