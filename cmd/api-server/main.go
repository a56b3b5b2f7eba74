package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"comicshelf/internal/comics"
	"comicshelf/internal/covers"
	"comicshelf/internal/index"
	"comicshelf/internal/pages"
	"comicshelf/internal/scanner"
	synchub "comicshelf/internal/sync"
	"comicshelf/pkg/utils"
)

func main() {
	configPath := flag.String("config", "comicshelf.toml", "path to an optional TOML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg utils.Config, logger *slog.Logger) error {
	lock, err := index.Lock(cfg.IndexPath)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	store, closeStore, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()

	// a corrupt index stops startup; nothing is overwritten
	ix := index.New(store, logger)
	if err := ix.Load(ctx); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.ComicsDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.CoversDir, 0o755); err != nil {
		return err
	}

	hub := synchub.NewHub(logger)

	sc := scanner.New(cfg.ComicsDir, ix, covers.NewExtractor(cfg.CoversDir, cfg.CoverURLPrefix, cfg.CoverWidth), logger)
	sc.Notifier = hub
	if _, err := sc.Reconcile(ctx); err != nil {
		logger.Warn("initial reconcile failed", slog.Any("error", err))
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Static(cfg.CoverURLPrefix, cfg.CoversDir)
	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "index": cfg.IndexPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		if _, err := os.Stat(cfg.ComicsDir); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"comics_dir":  err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"comics":      ix.Len(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	handler := comics.NewHandler(ix, sc, pages.NewService(ix, logger), logger)
	handler.Timeout = cfg.Timeout()
	handler.RegisterRoutes(router.Group("/api"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	// bind the TCP feed first so binding errors show up before HTTP starts
	var tcpSrv *synchub.Server
	if cfg.SyncAddr != "" {
		tcpSrv = synchub.NewServer(cfg.SyncAddr, hub)
		if err := tcpSrv.Listen(); err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Serve(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("comics_dir", cfg.ComicsDir),
			slog.Int("comics", ix.Len()))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("server error", slog.Any("error", runErr))
	}

	logger.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", slog.Any("error", err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Error("tcp shutdown error", slog.Any("error", err))
		}
	}
	hub.CloseAll()

	wg.Wait()
	logger.Info("servers stopped")
	return runErr
}
