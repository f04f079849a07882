package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/pulseboard/config"
	"github.com/pulseboard/pulseboard/internal/dashboard"
	"github.com/pulseboard/pulseboard/internal/guard"
	"github.com/pulseboard/pulseboard/internal/identity"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager   *helpers.JWTManager
	cookieMgr    *helpers.Manager
	rabbitPub    *helpers.RabbitPublisher
	sessionStore session.Store
	resolver     *guard.Resolver
	provider     *identity.LocalProvider
	oauthManager *identity.OAuthManager

	cryptoSource dashboard.CryptoSource
	ratesSource  dashboard.RatesSource
	newsSource   dashboard.NewsSource
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }
func SetCookies(m *helpers.Manager) { cookieMgr = m }
func GetCookies() *helpers.Manager  { return cookieMgr }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetSessionStore(s session.Store) { sessionStore = s }
func GetSessionStore() session.Store  { return sessionStore }
func SetResolver(r *guard.Resolver)   { resolver = r }
func GetResolver() *guard.Resolver    { return resolver }

func SetProvider(p *identity.LocalProvider) { provider = p }
func GetProvider() *identity.LocalProvider  { return provider }
func SetOAuth(m *identity.OAuthManager)     { oauthManager = m }
func GetOAuth() *identity.OAuthManager      { return oauthManager }

func SetSources(c dashboard.CryptoSource, r dashboard.RatesSource, n dashboard.NewsSource) {
	cryptoSource, ratesSource, newsSource = c, r, n
}
func GetCryptoSource() dashboard.CryptoSource { return cryptoSource }
func GetRatesSource() dashboard.RatesSource   { return ratesSource }
func GetNewsSource() dashboard.NewsSource     { return newsSource }
