package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/dashboard"
)

type stubCrypto struct{ err error }

func (s stubCrypto) Prices(_ context.Context) (dashboard.PriceTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return dashboard.PriceTable{"bitcoin": {"usd": decimal.NewFromInt(67000)}}, nil
}

type stubRates struct{}

func (stubRates) Rates(_ context.Context) (dashboard.RateTable, error) {
	return dashboard.RateTable{"EUR": decimal.NewFromFloat(0.92)}, nil
}

type stubNews struct{ n int }

func (s stubNews) Headlines(_ context.Context) ([]dashboard.Article, error) {
	out := make([]dashboard.Article, s.n)
	for i := range out {
		out[i] = dashboard.Article{Title: fmt.Sprintf("Headline %d", i+1)}
	}
	return out, nil
}

func dashEngine(crypto dashboard.CryptoSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDashboardHandler(crypto, stubRates{}, stubNews{n: 8}, dashboard.Options{
		Assets:     []string{"bitcoin"},
		VsCurrency: "usd",
	}, nil)
	r := gin.New()
	r.GET("/dashboard", h.Overview)
	r.GET("/dashboard/news", h.News)
	r.GET("/dashboard/chart", h.Chart)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestOverviewHappyPath(t *testing.T) {
	w := get(t, dashEngine(stubCrypto{}), "/dashboard")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"cards"`)
	assert.Contains(t, body, `"labels":["EUR"]`)
	assert.Contains(t, body, "Headline 1")
}

func TestOverviewSourceFailureReturnsGenericError(t *testing.T) {
	w := get(t, dashEngine(stubCrypto{err: errors.New("429")}), "/dashboard")

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch data.")
	assert.NotContains(t, w.Body.String(), "429", "upstream detail stays out of the response")
}

func TestNewsDefaultLimitIsFive(t *testing.T) {
	w := get(t, dashEngine(stubCrypto{}), "/dashboard/news")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Headline 5")
	assert.NotContains(t, body, "Headline 6")
	assert.Contains(t, body, `"total":8`)
}

func TestNewsLimitZeroReturnsAll(t *testing.T) {
	w := get(t, dashEngine(stubCrypto{}), "/dashboard/news?limit=0")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Headline 8")
}

func TestNewsInvalidLimitRejected(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, get(t, dashEngine(stubCrypto{}), "/dashboard/news?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, dashEngine(stubCrypto{}), "/dashboard/news?limit=-1").Code)
}

func TestNewsFilterAppliedBeforeLimit(t *testing.T) {
	w := get(t, dashEngine(stubCrypto{}), "/dashboard/news?q=headline+7")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Headline 7")
	assert.Contains(t, body, `"total":1`)
	assert.NotContains(t, body, "Headline 1\"")
}

func TestChartEndpoint(t *testing.T) {
	w := get(t, dashEngine(stubCrypto{}), "/dashboard/chart")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"labels":["EUR"]`)
}
