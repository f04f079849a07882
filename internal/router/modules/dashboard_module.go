package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulseboard/pulseboard/internal/container"
	handlers "github.com/pulseboard/pulseboard/internal/interface/http"
	"github.com/pulseboard/pulseboard/internal/interface/middleware"
	"github.com/pulseboard/pulseboard/pkg/helpers"
)

type DashboardModule struct {
	Handler *handlers.DashboardHandler
	JWT     *helpers.JWTManager
}

func NewDashboardModule(h *handlers.DashboardHandler, jwt *helpers.JWTManager) *DashboardModule {
	return &DashboardModule{Handler: h, JWT: jwt}
}

func (m *DashboardModule) Register(rg *gin.RouterGroup) {
	dash := rg.Group("/dashboard")
	dash.Use(middleware.SessionGuard(container.GetResolver(), m.JWT))
	dash.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		dash.GET("", m.Handler.Overview)
		dash.GET("/news", m.Handler.News)
		dash.GET("/chart", m.Handler.Chart)
	}
}
