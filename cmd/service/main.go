package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/client/objectstore"
	"github.com/s21platform/group-chat-service/internal/client/push"
	"github.com/s21platform/group-chat-service/internal/config"
	"github.com/s21platform/group-chat-service/internal/delivery"
	"github.com/s21platform/group-chat-service/internal/infra"
	"github.com/s21platform/group-chat-service/internal/media"
	"github.com/s21platform/group-chat-service/internal/pkg/jwt"
	"github.com/s21platform/group-chat-service/internal/pkg/ratelimit"
	"github.com/s21platform/group-chat-service/internal/pkg/validator"
	"github.com/s21platform/group-chat-service/internal/registry"
	db "github.com/s21platform/group-chat-service/internal/repository/postgres"
	"github.com/s21platform/group-chat-service/internal/repository/redis"
	"github.com/s21platform/group-chat-service/internal/rest"
	"github.com/s21platform/group-chat-service/internal/retention"
	"github.com/s21platform/group-chat-service/internal/router"
	"github.com/s21platform/group-chat-service/internal/service"
	"github.com/s21platform/group-chat-service/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	logger := logger_lib.New(cfg.Logger.Host, cfg.Logger.Port, cfg.Service.Name, cfg.Platform.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbRepo := db.New(cfg)
	defer dbRepo.Close()

	redisRepo := redis.New(cfg)
	defer redisRepo.Close()

	pushClient := push.New(cfg)
	defer pushClient.Close()

	objectStore, err := objectstore.New(cfg)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to create object store client: %v", err))
		return
	}

	backoff, err := cfg.Delivery.BackoffSchedule()
	if err != nil {
		logger.Error(fmt.Sprintf("failed to read delivery backoff: %v", err))
		return
	}

	jwtGenerator := jwt.New(cfg.Auth.AccessSecret, cfg.Auth.ConnectSecret, cfg.Auth.ConnectTTL)
	limiter := ratelimit.New(map[ratelimit.Action]ratelimit.Budget{
		ratelimit.ActionSend:     {Limit: cfg.Limits.SendBudget, Window: cfg.Limits.RateWindow},
		ratelimit.ActionTyping:   {Limit: cfg.Limits.TypingBudget, Window: cfg.Limits.RateWindow},
		ratelimit.ActionReaction: {Limit: cfg.Limits.ReactionBudget, Window: cfg.Limits.RateWindow},
	})

	var wsHandler *ws.Handler
	sessions := registry.New(
		registry.Config{
			MaxSessionsPerUser: cfg.Limits.MaxSessionsPerUser,
			HeartbeatTimeout:   cfg.Limits.HeartbeatTimeout,
		},
		dbRepo,
		logger,
		registry.WithJanitor(func() {
			limiter.Cleanup()
			wsHandler.Cleanup()
		}),
	)

	promRegistry := prometheus.NewRegistry()
	metrics := infra.NewMetrics(promRegistry, sessions.Stats)

	queue := delivery.New(
		delivery.Config{
			MaxAttempts: cfg.Delivery.MaxAttempts,
			Backoff:     backoff,
			BatchSize:   cfg.Delivery.BatchSize,
			ExpireAfter: cfg.Delivery.ExpireAfter,
		},
		dbRepo,
		sessions,
		pushClient,
		logger,
		delivery.WithLastSeen(redisRepo),
		delivery.WithMetrics(metrics),
	)

	broadcaster := router.New(sessions, dbRepo, queue, logger)

	chatService := service.New(
		service.Config{
			EditWindow:     cfg.Limits.EditWindow,
			PersistTimeout: cfg.Limits.PersistTimeout,
			TypingTTL:      cfg.Limits.TypingTTL,
		},
		dbRepo,
		broadcaster,
		limiter,
		redisRepo,
		validator.New(),
		logger,
	)

	intake := media.New(
		media.Limits{
			Image:    cfg.Media.MaxImageBytes,
			Voice:    cfg.Media.MaxVoiceBytes,
			Video:    cfg.Media.MaxVideoBytes,
			Document: cfg.Media.MaxDocBytes,
		},
		dbRepo,
		objectStore,
		logger,
	)

	wsHandler = ws.New(
		ws.Config{
			HeartbeatTimeout: cfg.Limits.HeartbeatTimeout,
			HandshakeRPS:     cfg.Limits.HandshakeRPS,
			HandshakeBurst:   cfg.Limits.HandshakeBurst,
		},
		chatService,
		sessions,
		jwtGenerator,
		logger,
		ws.WithObserver(metrics),
		ws.WithSeenMarker(redisRepo),
	)

	housekeeping, err := retention.New(
		retention.Config{
			Cron:       cfg.Retention.Cron,
			DeletedTTL: cfg.Retention.DeletedTTL,
			AuditTTL:   cfg.Retention.AuditTTL,
		},
		dbRepo,
		chatService,
		logger,
	)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to configure retention: %v", err))
		return
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			infra.LoggerGRPC(logger),
		),
	)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	handler := rest.New(chatService, intake, jwtGenerator, sessions, queue, metrics)
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return infra.LoggerHTTP(next, logger)
	})

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	r.Handle("/ws", wsHandler)

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return infra.AuthInterceptorHTTP(next, jwtGenerator)
		})
		r.Use(func(next http.Handler) http.Handler {
			return infra.MetricsHTTP(next, metrics)
		})

		handler.Routes(r)
	})

	httpServer := &http.Server{
		Handler: r,
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Service.Port))
	if err != nil {
		logger.Error(fmt.Sprintf("failed to start TCP listener: %v", err))
		return
	}

	m := cmux.New(listener)

	grpcListener := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpListener := m.Match(cmux.HTTP1Fast())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := m.Serve(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			return fmt.Errorf("cannot start service: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		sessions.Run(gctx, cfg.Limits.HeartbeatTimeout/2)
		return nil
	})

	g.Go(func() error {
		queue.Run(gctx, cfg.Delivery.SweepInterval)
		return nil
	})

	g.Go(func() error {
		housekeeping.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := dbRepo.Ping(gctx); err != nil {
			return fmt.Errorf("postgres is unavailable: %v", err)
		}
		if err := redisRepo.Ping(gctx); err != nil {
			return fmt.Errorf("redis is unavailable: %v", err)
		}
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		logger.Info(fmt.Sprintf("%s is serving on :%s", cfg.Service.Name, cfg.Service.Port))
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		healthServer.Shutdown()
		sessions.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("failed to shut down HTTP server: %v", err))
		}
		grpcServer.GracefulStop()
		m.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("server error: %v", err))
	}
}
