package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pulseboard/pulseboard/config"
	"github.com/pulseboard/pulseboard/internal/container"
	"github.com/pulseboard/pulseboard/internal/dashboard"
	"github.com/pulseboard/pulseboard/internal/guard"
	"github.com/pulseboard/pulseboard/internal/identity"
	pginfra "github.com/pulseboard/pulseboard/internal/infrastructure/postgres"
	"github.com/pulseboard/pulseboard/internal/interface/middleware"
	"github.com/pulseboard/pulseboard/internal/router"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/pkg/helpers"
	"github.com/pulseboard/pulseboard/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	// RabbitMQ publisher for reset emails; optional in development
	var pub *helpers.RabbitPublisher
	if cfg.RabbitMQURL != "" && cfg.MailSendEnabled {
		pub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer pub.Close()
	}

	// JWT + cookies
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	// Session guard over the Redis marker store
	store := session.NewRedisStore(rdb)
	resolver := guard.NewResolver(store)

	// Identity provider with OAuth support
	oauth := identity.NewOAuthManager(identity.OAuthCredentials{
		GoogleClientID:       cfg.GoogleClientID,
		GoogleClientSecret:   cfg.GoogleClientSecret,
		FacebookClientID:     cfg.FacebookClientID,
		FacebookClientSecret: cfg.FacebookClientSecret,
		RedirectBase:         cfg.OAuthRedirectBase,
	})
	provider := &identity.LocalProvider{
		Repo:            pginfra.NewUserRepository(pool),
		RDB:             rdb,
		Pub:             pub,
		OAuth:           oauth,
		Logger:          logger,
		ResetURL:        cfg.ResetPasswordURL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
		MailSendEnabled: cfg.MailSendEnabled,
	}

	// Dashboard sources share one HTTP client and the Redis response cache
	crypto, rates, news := dashboard.NewSources(dashboard.SourceConfig{
		CryptoURL:    cfg.CryptoAPIURL,
		Assets:       cfg.Assets(),
		VsCurrency:   cfg.VsCurrency,
		RatesURL:     cfg.RatesAPIURL,
		RatesBase:    cfg.RatesBase,
		NewsURL:      cfg.NewsAPIURL,
		NewsAPIKey:   cfg.NewsAPIKey,
		NewsCountry:  cfg.NewsCountry,
		NewsCategory: cfg.NewsCategory,
		Timeout:      cfg.SourceTimeout,
		CacheTTL:     cfg.SourceCacheTTL,
	}, rdb)

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetCookies(cookies)
	container.SetRabbitPub(pub)
	container.SetSessionStore(store)
	container.SetResolver(resolver)
	container.SetProvider(provider)
	container.SetOAuth(oauth)
	container.SetSources(crypto, rates, news)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
