package main

import (
	"context"
	"database/sql"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"employee-directory/backend/internal/audit"
	auditrepo "employee-directory/backend/internal/audit/repository"
	"employee-directory/backend/internal/config"
	"employee-directory/backend/internal/db"
	healthhandler "employee-directory/backend/internal/health/handler"
	"employee-directory/backend/internal/identity/service"
	"employee-directory/backend/internal/logging"
	refreshrepo "employee-directory/backend/internal/refreshtoken/repository"
	"employee-directory/backend/internal/security"
	"employee-directory/backend/internal/server"
	"employee-directory/backend/internal/server/interceptors"
	telemetryotel "employee-directory/backend/internal/telemetry/otel"
	userrepo "employee-directory/backend/internal/user/repository"
)

func main() {
	bootLog := logging.New("info", "json", nil)

	cfg, err := config.Load()
	if err != nil {
		bootLog.WithError(err).Fatal("config")
	}
	cipher, err := security.NewCipher([]byte(cfg.DecryptKey))
	if err != nil {
		bootLog.WithError(err).Fatal("cipher")
	}
	if err := cfg.DecryptSecrets(cipher); err != nil {
		bootLog.WithError(err).Fatal("decrypt secrets")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Settings{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.OTELServiceName,
		Insecure:    cfg.OTLPInsecure,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("telemetry")
	}
	providers.SetGlobal()
	log.AddHook(telemetryotel.NewLogHook(providers.LoggerProvider, "employee-directory", log.GetLevel()))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	tokens, err := security.NewTokenProvider([]byte(cfg.JWTSecretKey), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		log.WithError(err).Fatal("token provider")
	}
	resets, err := security.NewResetTokens([]byte(cfg.JWTSecretKey), 24*time.Hour)
	if err != nil {
		log.WithError(err).Fatal("reset tokens")
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := db.Open(openCtx, cfg.DatabaseURL, db.PoolOptions{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute})
	cancel()
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer conn.Close()

	refresh, pingers, closeRefresh := refreshStore(cfg, conn, log)
	defer closeRefresh()

	auditLog := audit.NewAsyncLogger(audit.NewLogger(auditrepo.NewPostgresRepository(conn), interceptors.ClientIP, log))

	users := userrepo.NewPostgresRepository(conn)
	auth := service.NewAuthService(users, refresh, tokens, log)
	accounts := service.NewUserService(service.UserServiceDeps{
		Users:       users,
		Auth:        auth,
		Cipher:      cipher,
		Hasher:      security.NewHasher(cfg.BcryptCost),
		ResetTokens: resets,
		Session:     interceptors.NewGRPCSession(cfg.SecureCookies()),
		Audit:       auditLog,
		Log:         log,
		DeliveryTTL: cfg.SessionCookieTTL(),
	})

	health := healthhandler.NewServer(pingers, []string{"employees.v1.AccountService"}, log)
	health.Update(ctx)
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go health.Watch(watchCtx, 15*time.Second)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.WithError(err).Fatal("listen")
	}
	defer lis.Close()

	s := server.NewGRPCServer(tokens, log)
	server.RegisterServices(s, server.Deps{Accounts: accounts, Roles: users, Health: health})

	go func() {
		log.WithField("addr", cfg.GRPCAddr).Info("gRPC server listening")
		if err := s.Serve(lis); err != nil {
			log.WithError(err).Fatal("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gRPC server...")
	stopWatch()
	s.GracefulStop()
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	if err := auditLog.Drain(drainCtx); err != nil {
		log.WithError(err).Warn("audit writes still in flight")
	}
	cancelDrain()
	log.Info("gRPC server stopped")
}

// refreshStore picks the refresh-token backend and returns the health dependencies that
// come with it.
func refreshStore(cfg *config.Config, conn *sql.DB, log logrus.FieldLogger) (service.RefreshTokenRepo, map[string]healthhandler.Pinger, func()) {
	pingers := map[string]healthhandler.Pinger{"postgres": conn}
	if cfg.RefreshStore != config.RefreshStoreRedis {
		return refreshrepo.NewPostgresRepository(conn), pingers, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingers["redis"] = healthhandler.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	log.WithField("addr", cfg.RedisAddr).Info("refresh tokens stored in redis")
	return refreshrepo.NewRedisRepository(client, ""), pingers, func() { _ = client.Close() }
}
