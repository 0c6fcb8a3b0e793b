package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"delliapp/auth"
	"delliapp/cache"
	"delliapp/config"
	"delliapp/events"
	"delliapp/handlers"
	"delliapp/logger"
	"delliapp/metrics"
	"delliapp/middleware"
	"delliapp/models"
	"delliapp/payment"
	"delliapp/routes"
	"delliapp/storage"
	"delliapp/store"
	"delliapp/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "delli-api")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	var (
		kv  cache.KV
		bus events.Bus
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		defer rdb.Close()
		kv, bus = cache.NewRedisKV(rdb), events.NewRedisBus(rdb, log)
		log.Info("using redis for cache and realtime", zap.String("addr", cfg.RedisAddr))
	} else {
		kv, bus = cache.NewMemoryKV(), events.NewMemoryBus()
		log.Info("REDIS_ADDR not set, cache and realtime stay in memory")
	}

	var outbound events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer p.Close()
		outbound = p
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	host := tenancy.HostConfig{RootDomain: cfg.RootDomain, AdminLabel: cfg.AdminLabel, PrivilegedRole: string(models.RoleAdmin)}
	teams := store.NewTeamRepo(db)
	cached := store.NewCachedTeams(teams, kv, cfg.TeamCacheTTL, log)
	rls := store.NewRLS(db)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	h := &handlers.Handler{
		DB:       db,
		Teams:    teams,
		Cache:    cached,
		Profiles: store.NewProfileRepo(db),
		RLS:      rls,
		Tokens:   tokens,
		OTP:      auth.NewOTP(kv, cfg.OTPTTL, cfg.OTPRatePerMin),
		Bus:      bus,
		Outbound: outbound,
		Payments: payment.New(cfg.FunctionsURL, cfg.FunctionsKey),
		Bucket:   storage.New(cfg.StorageDir, cfg.PublicBaseURL),
		Metrics:  m,
		Log:      log,
		Host:     host,
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())
	routes.SetupRoutes(r, h, routes.Options{
		Host:       host,
		Resolver:   tenancy.NewResolver(cached, rls, log, m),
		Tokens:     tokens,
		Debouncer:  tenancy.NewDebouncer(cfg.GuardCooldown),
		Metrics:    m,
		Gatherer:   reg,
		StorageDir: cfg.StorageDir,
		RedirectTo: "/",
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("root_domain", cfg.RootDomain))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
