package router

import (
	"github.com/pulseboard/pulseboard/internal/container"
	pginfra "github.com/pulseboard/pulseboard/internal/infrastructure/postgres"
	handlers "github.com/pulseboard/pulseboard/internal/interface/http"
	"github.com/pulseboard/pulseboard/internal/router/modules"
)

func buildAuthHandler() *handlers.AuthHandler {
	users := pginfra.NewUserRepository(container.GetPGPool())
	return handlers.NewAuthHandler(
		container.GetProvider(),
		container.GetSessionStore(),
		container.GetOAuth(),
		users,
		container.GetJWT(),
		container.GetCookies(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetConfig(),
	)
}

func buildDashboardHandler() *handlers.DashboardHandler {
	cfg := container.GetConfig()
	return handlers.NewDashboardHandler(
		container.GetCryptoSource(),
		container.GetRatesSource(),
		container.GetNewsSource(),
		handlers.DashboardOptions(cfg),
		container.GetLogger(),
	)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(modules.NewAuthModule(buildAuthHandler(), container.GetJWT()))
	r.Add(modules.NewDashboardModule(buildDashboardHandler(), container.GetJWT()))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
