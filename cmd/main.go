package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/cwrk-planet/watch-together/config"
	"github.com/cwrk-planet/watch-together/internal/cache"
	"github.com/cwrk-planet/watch-together/internal/logger"
	"github.com/cwrk-planet/watch-together/internal/postgres"
	"github.com/cwrk-planet/watch-together/internal/registry"
	"github.com/cwrk-planet/watch-together/internal/security"
	"github.com/cwrk-planet/watch-together/internal/service"
	grpcx "github.com/cwrk-planet/watch-together/internal/transport/grpc"
	httpx "github.com/cwrk-planet/watch-together/internal/transport/http"
	"github.com/cwrk-planet/watch-together/internal/transport/ws"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting watch-together",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- tracing ---
	// экспортёра нет: span'ы нужны ради trace_id/span_id в логах запроса
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- postgres ---
	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:               cfg.Postgres.DSN,
		MaxConns:          cfg.Postgres.MaxConns,
		MinConns:          cfg.Postgres.MinConns,
		MaxConnLifetime:   cfg.Postgres.MaxConnLifetime,
		MaxConnIdleTime:   cfg.Postgres.MaxConnIdleTime,
		HealthCheckPeriod: cfg.Postgres.HealthCheckPeriod,
		ApplicationName:   cfg.Postgres.ApplicationName,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- repos ---
	users := postgres.NewUserRepo(pool)
	videoRepo := postgres.NewVideoRepo(pool)
	var videos service.VideoCatalog = videoRepo

	// --- redis (опционально) ---
	if cfg.Redis.Addr != "" {
		videoCache, err := cache.NewRedisVideoCache(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer videoCache.Close()
		videos = cache.NewCachedCatalog(videoRepo, videoCache, cfg.Redis.VideoTTL)
		slog.Info("video cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.VideoTTL)
	}

	// --- auth ---
	pub, err := security.LoadRSAPublicKeyFromPEM(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("load jwt public key: %v", err)
	}
	verifier := security.NewJWTVerifier(pub, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.ClockSkew)

	// --- coordinator ---
	rooms := registry.NewRooms()
	bindings := registry.NewBindings()
	hub := ws.NewHub()
	watchSvc := service.NewWatchService(rooms, bindings, users, videos, hub)

	// --- WS & HTTP ---
	wsServer := ws.NewServer(hub, watchSvc, ws.Config{
		PingEvery:      cfg.WebSocket.PingEvery,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	router := httpx.NewRouter(httpx.NewHandler(watchSvc), wsServer, verifier, httpx.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- gRPC (health + reflection) ---
	grpcSrv := grpcx.NewServer()

	// --- run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		return grpcSrv.Serve(lis)
	})

	// --- graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "cause", context.Cause(gctx))

		grpcSrv.Drain()

		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctxShutdown); err != nil {
			slog.Warn("http shutdown", "err", err)
		}
		// websocket-соединения Shutdown не трогает
		hub.CloseAll()

		grpcSrv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		slog.Warn("tracer shutdown", "err", err)
	}
	slog.Info("stopped", "rooms", watchSvc.Stats().Rooms)
}
