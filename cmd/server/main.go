package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bims/internal/account"
	"bims/internal/announcement"
	"bims/internal/certificate"
	"bims/internal/idgen"
	jwttoken "bims/internal/jwt_token"
	"bims/internal/official"
	"bims/internal/platform/config"
	"bims/internal/platform/httpserver"
	"bims/internal/platform/logger"
	"bims/internal/platform/metrics"
	platformredis "bims/internal/platform/redis"
	"bims/internal/resident"
	"bims/internal/store"
	httptransport "bims/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	defer redisClient.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	records := store.NewRedisStore(redisClient.Client)
	ids := idgen.New(records)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "bims", "bims-api")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	residents := resident.NewService(records, ids, log)
	officials := official.NewService(records, ids)
	announcements := announcement.NewService(records, ids)
	certificates := certificate.NewService(records, ids)
	accounts := account.NewService(records, jwtService, residents, cfg.TokenTTL, cfg.AdminUsername)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := accounts.Bootstrap(ctx, cfg.AdminPassword); err != nil {
		log.Error("admin bootstrap failed", "error", err.Error())
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: m,
		Health: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(pingCtx)
		},
		Features: []httptransport.FeatureHandler{
			account.New(accounts, log, m, validator),
			resident.NewHandler(residents, log, m, validator),
			official.NewHandler(officials, log, validator),
			announcement.NewHandler(announcements, log, validator),
			certificate.NewHandler(certificates, log, m, validator),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
