package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	stdlog "log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nothuman/internal/config"
	"nothuman/internal/game"
	"nothuman/internal/handlers"
	"nothuman/internal/logging"
	"nothuman/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	catalog, err := tasks.Load(cfg.TasksFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.TasksFile).Msg("failed to load tasks")
	}
	store, err := game.NewStore(cfg.MaxViews, game.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create view store")
	}
	defer store.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open static files")
	}
	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	socketConf := handlers.DefaultSocketConfig()
	socketConf.CheckOrigin = handlers.OriginChecker(cfg.AllowedOrigins)

	homeHandler := handlers.NewHomeHandler(store, catalog, cfg.DefaultDPR)
	roundHandler := handlers.NewRoundHandler(store, cfg.BaseURL)
	boardHandler := handlers.NewBoardHandler(store, socketConf)

	homeHandler.RegisterRoutes(r)
	roundHandler.RegisterRoutes(r)
	boardHandler.RegisterRoutes(r)

	var handler http.Handler = r
	if len(cfg.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "Hx-Request", "Hx-Target", "Hx-Trigger", "Hx-Current-Url"},
			AllowCredentials: true,
		}).Handler(r)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Streams and board sockets stay open; plain requests are bounded
		// by the Timeout middleware instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     stdLogger(logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// Unmounting ends every stream and board socket so Shutdown can drain.
		store.Close()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}

func stdLogger(logger zerolog.Logger) *stdlog.Logger {
	return stdlog.New(logger.With().Str("source", "http").Logger(), "", 0)
}

//go:embed static/*
var embeddedStatic embed.FS
