package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/pulseboard/config"
	"github.com/pulseboard/pulseboard/internal/dashboard"
	"github.com/pulseboard/pulseboard/pkg/response"
)

const defaultNewsLimit = 5

// DashboardHandler serves the aggregated dashboard views. Every request runs
// the full batch load so the all-or-nothing contract holds for each response.
type DashboardHandler struct {
	Crypto  dashboard.CryptoSource
	Rates   dashboard.RatesSource
	NewsSrc dashboard.NewsSource
	Opts    dashboard.Options
	Logger  *logrus.Logger
}

func NewDashboardHandler(crypto dashboard.CryptoSource, rates dashboard.RatesSource, news dashboard.NewsSource, opts dashboard.Options, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Crypto: crypto, Rates: rates, NewsSrc: news, Opts: opts, Logger: logger}
}

func (h *DashboardHandler) load(c *gin.Context) (*dashboard.Controller, bool) {
	ctrl := dashboard.NewController(h.Crypto, h.Rates, h.NewsSrc, h.Opts, h.Logger)
	ctrl.SetFilter(c.Query("q"))
	if err := ctrl.Load(c.Request.Context()); err != nil {
		snap := ctrl.Snapshot()
		ctrl.Close()
		response.Error[any](c, http.StatusBadGateway, snap.Error, snap)
		return nil, false
	}
	return ctrl, true
}

// Overview GET /api/dashboard?q=...
func (h *DashboardHandler) Overview(c *gin.Context) {
	ctrl, ok := h.load(c)
	if !ok {
		return
	}
	defer ctrl.Close()

	response.Success(c, http.StatusOK, gin.H{
		"snapshot": ctrl.Snapshot(),
		"cards":    ctrl.Cards(),
		"chart":    ctrl.Chart().Series(),
	}, "dashboard", nil)
}

// News GET /api/dashboard/news?q=...&limit=...
// limit defaults to 5; limit=0 returns the whole filtered list.
func (h *DashboardHandler) News(c *gin.Context) {
	ctrl, ok := h.load(c)
	if !ok {
		return
	}
	defer ctrl.Close()

	limit := defaultNewsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error[any](c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = n
	}

	filtered := ctrl.Snapshot().Filtered
	articles := filtered
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	response.Success(c, http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(filtered),
	}, "headlines", nil)
}

// Chart GET /api/dashboard/chart
func (h *DashboardHandler) Chart(c *gin.Context) {
	ctrl, ok := h.load(c)
	if !ok {
		return
	}
	defer ctrl.Close()

	response.Success(c, http.StatusOK, ctrl.Chart().Series(), "exchange rate series", nil)
}

// DashboardOptions derives the card/chart options from configuration.
func DashboardOptions(cfg *config.Config) dashboard.Options {
	return dashboard.Options{
		Assets:        cfg.Assets(),
		VsCurrency:    cfg.VsCurrency,
		BaseCurrency:  cfg.RatesBase,
		QuoteCurrency: "EUR",
	}
}
