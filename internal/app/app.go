package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MikhailRaia/url-shortcuts/internal/config"
	"github.com/MikhailRaia/url-shortcuts/internal/handler"
	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/metrics"
	"github.com/MikhailRaia/url-shortcuts/internal/middleware"
	"github.com/MikhailRaia/url-shortcuts/internal/proto"
	"github.com/MikhailRaia/url-shortcuts/internal/service"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/MikhailRaia/url-shortcuts/internal/storage/file"
	"github.com/MikhailRaia/url-shortcuts/internal/storage/memory"
	"github.com/MikhailRaia/url-shortcuts/internal/storage/postgres"
	"github.com/MikhailRaia/url-shortcuts/internal/storage/redis"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	store      storage.ShortcutStore
	handler    http.Handler
	grpcServer *grpc.Server
}

// NewApp opens the configured store and wires the HTTP and gRPC layers on top of it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	generator := keygen.New(
		keygen.WithSize(cfg.KeySize),
		keygen.WithCollisionHook(metrics.RecordCollision),
	)

	store, err := newStore(ctx, cfg, generator)
	if err != nil {
		return nil, err
	}

	shortcutService := service.NewShortcutService(store, cfg.BaseURL)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(middleware.GRPCLogger))
	proto.RegisterShortcutServiceServer(grpcServer, handler.NewShortcutGRPCServer(shortcutService))

	return &App{
		config:     cfg,
		store:      store,
		handler:    handler.NewHandler(shortcutService).RegisterRoutes(),
		grpcServer: grpcServer,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config, g *keygen.Generator) (storage.ShortcutStore, error) {
	backend := cfg.Backend()
	log.Info().Str("backend", string(backend)).Msg("Opening shortcut storage")

	var (
		store storage.ShortcutStore
		err   error
	)

	switch backend {
	case config.BackendPostgres:
		store, err = postgres.NewStorage(ctx, cfg.DatabaseDSN, g)
	case config.BackendRedis:
		store, err = redis.NewStorage(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, g)
	case config.BackendFile:
		store, err = file.NewStorage(cfg.FileStoragePath, g)
	default:
		store = memory.NewStorage(memory.WithGenerator(g))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", backend, err)
	}

	return store, nil
}

// Handler returns the HTTP router.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP, and gRPC when an address is configured, until ctx is
// cancelled or a server fails. The store is closed before Run returns.
func (a *App) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("address", a.config.ServerAddress).
			Str("base_url", a.config.BaseURL).
			Msg("Starting HTTP server")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.config.GRPCAddress != "" {
		lis, err := net.Listen("tcp", a.config.GRPCAddress)
		if err != nil {
			return errors.Join(fmt.Errorf("failed to listen on %s: %w", a.config.GRPCAddress, err), a.store.Close())
		}

		g.Go(func() error {
			log.Info().Str("address", a.config.GRPCAddress).Msg("Starting gRPC server")

			if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	if closeErr := a.store.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to close storage")
		err = errors.Join(err, closeErr)
	}

	return err
}

// Close releases the store without running the servers.
func (a *App) Close() error {
	a.grpcServer.Stop()
	return a.store.Close()
}
