package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/OdochHerbert/dropbox-clone/internal/api"
	"github.com/OdochHerbert/dropbox-clone/internal/config"
	"github.com/OdochHerbert/dropbox-clone/internal/logger"
	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/metadata/mongostore"
	"github.com/OdochHerbert/dropbox-clone/internal/metadata/sqlstore"
	"github.com/OdochHerbert/dropbox-clone/internal/storage"
	"github.com/OdochHerbert/dropbox-clone/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	meta, err := openMetadata(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}

	blobs, err := openBlobs(ctx, cfg, log)
	if err != nil {
		meta.Close(context.Background())
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if inline, ok := blobs.(*storage.InlineStore); ok {
		defer inline.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.SetupMiddleware(e, log)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))

	if cfg.Logging.RequestLogging {
		e.Use(api.RequestLogger(log))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableGzip {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Path(), "/download")
			},
		}))
	}

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  cfg.Origins(),
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{echo.HeaderLocation, echo.HeaderContentDisposition},
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Meta:    meta,
		Blobs:   blobs,
		Variant: cfg.Service.Variant,
		Version: Version,
		Logger:  log,
	}))

	// Static files last so API routes take precedence
	if cfg.Server.StaticDir != "" {
		if err := web.RegisterStaticRoutes(e, cfg.Server.StaticDir); err != nil {
			log.Warn("static files disabled", zap.Error(err))
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	log.Info("server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("config", configPath),
		zap.String("addr", cfg.GetServerAddr()),
		zap.String("variant", cfg.Service.Variant),
		zap.String("storage_mode", cfg.Storage.Mode),
		zap.String("metadata_driver", cfg.Metadata.Driver),
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.StartServer(s)
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := meta.Close(shutdownCtx); err != nil {
		log.Error("closing metadata store", zap.Error(err))
	}
	return nil
}

// resolveConfigPath returns CONFIG_PATH or config.yaml next to the executable.
func resolveConfigPath() (string, error) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), "config.yaml"), nil
}

func openMetadata(ctx context.Context, cfg *config.AppConfig) (metadata.Store, error) {
	switch cfg.Metadata.Driver {
	case config.DriverMongo:
		db, err := mongostore.Connect(ctx, cfg.Metadata.MongoURI)
		if err != nil {
			return nil, err
		}
		store := mongostore.New(db, cfg.Metadata.Collection)
		if err := store.EnsureIndexes(ctx); err != nil {
			store.Close(context.Background())
			return nil, err
		}
		return store, nil
	default:
		db, err := sqlstore.Open(cfg.Metadata.Driver, cfg.Metadata.SQLDSN)
		if err != nil {
			return nil, err
		}
		store, err := sqlstore.New(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	}
}

// openBlobs builds the blob store. For disk storage it also sweeps leftovers
// of interrupted uploads once, then on every tick until ctx is done.
func openBlobs(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (storage.BlobStore, error) {
	if cfg.Storage.Mode == storage.ModeInline {
		return storage.NewInlineStore(cfg.Storage.MaxInlineBytes, cfg.Storage.CompressInline)
	}

	store, err := storage.NewLocalStore(cfg.Storage.UploadsDirectory)
	if err != nil {
		return nil, err
	}

	sweep := func() {
		removed, err := store.SweepTemp(cfg.TempMaxAge())
		if err != nil {
			log.Warn("sweeping temp uploads", zap.Error(err))
			return
		}
		if removed > 0 {
			log.Info("swept temp uploads", zap.Int("removed", removed))
		}
	}
	sweep()

	if interval := cfg.SweepInterval(); interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					sweep()
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	return store, nil
}
