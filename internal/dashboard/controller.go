// Package dashboard owns the protected region's view state: one all-or-nothing
// batch fetch over three independent sources, a derived filtered article list,
// and the exchange-rate chart's scoped lifecycle.
package dashboard

import (
	"context"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrBatchFailed is the generic aggregate failure message. Per-source detail
// is logged but deliberately not surfaced; the view contract is one message.
const ErrBatchFailed = "Failed to fetch data."

// Snapshot is the aggregated read-only view state. It is rebuilt wholesale on
// every load; Filtered is derived, never independently mutated.
type Snapshot struct {
	Crypto     PriceTable `json:"crypto"`
	Rates      RateTable  `json:"rates"`
	Articles   []Article  `json:"articles"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	SearchTerm string     `json:"search_term"`
	Filtered   []Article  `json:"filtered"`
}

// Options tunes the derived card view.
type Options struct {
	// Assets preserves the configured display order of the price cards.
	Assets []string
	// VsCurrency is the currency the crypto prices are quoted in.
	VsCurrency string
	// BaseCurrency is the currency the rates are relative to.
	BaseCurrency string
	// QuoteCurrency is the rate highlighted on the exchange-rate card.
	QuoteCurrency string
}

// Controller drives the dashboard's loading/error/ready state machine.
// Not safe for concurrent use; each viewer works on its own instance.
type Controller struct {
	crypto CryptoSource
	rates  RatesSource
	news   NewsSource
	opts   Options
	logger *logrus.Logger

	snap  Snapshot
	chart *ChartHandle
}

func NewController(crypto CryptoSource, rates RatesSource, news NewsSource, opts Options, logger *logrus.Logger) *Controller {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "USD"
	}
	if opts.QuoteCurrency == "" {
		opts.QuoteCurrency = "EUR"
	}
	return &Controller{crypto: crypto, rates: rates, news: news, opts: opts, logger: logger}
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() Snapshot { return c.snap }

// Chart returns the live chart handle, if any.
func (c *Controller) Chart() *ChartHandle { return c.chart }

// Load issues the three reads concurrently and joins them as one unit. Any
// failure leaves the result sets empty and sets the single aggregate error;
// success populates the snapshot atomically and rebuilds the chart.
func (c *Controller) Load(ctx context.Context) error {
	term := c.snap.SearchTerm
	c.snap = Snapshot{Loading: true, SearchTerm: term}

	var (
		prices   PriceTable
		rates    RateTable
		articles []Article
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if prices, err = c.crypto.Prices(gctx); err != nil {
			c.logSourceErr("crypto", err)
		}
		return err
	})
	g.Go(func() error {
		var err error
		if rates, err = c.rates.Rates(gctx); err != nil {
			c.logSourceErr("rates", err)
		}
		return err
	})
	g.Go(func() error {
		var err error
		if articles, err = c.news.Headlines(gctx); err != nil {
			c.logSourceErr("news", err)
		}
		return err
	})

	err := g.Wait()
	c.snap.Loading = false
	if err != nil {
		c.snap.Error = ErrBatchFailed
		return err
	}

	c.snap.Crypto = prices
	c.snap.Rates = rates
	c.snap.Articles = articles
	c.snap.Filtered = Filter(articles, c.snap.SearchTerm)

	// The chart surface is stateful: always release the previous instance
	// before acquiring one over the new data.
	c.chart.Release()
	c.chart = acquireChart(BuildSeries(rates))
	return nil
}

// SetFilter updates the search term and eagerly recomputes the derived list.
func (c *Controller) SetFilter(term string) {
	c.snap.SearchTerm = term
	c.snap.Filtered = Filter(c.snap.Articles, term)
}

// Close releases held resources on view teardown.
func (c *Controller) Close() {
	c.chart.Release()
	c.chart = nil
}

// Filter returns the articles whose titles contain term, case-insensitively.
// An empty term returns the input unchanged, order preserved.
func Filter(articles []Article, term string) []Article {
	if strings.TrimSpace(term) == "" {
		return articles
	}
	needle := strings.ToLower(term)
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) {
			out = append(out, a)
		}
	}
	return out
}

// Cards derives the formatted tiles: one per configured asset plus the
// highlighted exchange rate.
func (c *Controller) Cards() []Card {
	if c.snap.Error != "" || c.snap.Loading {
		return nil
	}
	cards := make([]Card, 0, len(c.opts.Assets)+1)
	for _, asset := range c.opts.Assets {
		price, ok := c.snap.Crypto[asset][c.opts.VsCurrency]
		value := "N/A"
		if ok {
			value = formatAmount(c.opts.VsCurrency, price)
		}
		cards = append(cards, Card{Title: titleCase(asset), Value: value})
	}
	if rate, ok := c.snap.Rates[c.opts.QuoteCurrency]; ok {
		cards = append(cards, Card{
			Title: "Exchange Rate",
			Value: "1 " + c.opts.BaseCurrency + " = " + rate.String() + " " + c.opts.QuoteCurrency,
		})
	}
	return cards
}

func (c *Controller) logSourceErr(source string, err error) {
	if c.logger != nil {
		c.logger.WithError(err).WithField("source", source).Warn("dashboard source fetch failed")
	}
}

func formatAmount(code string, d decimal.Decimal) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return d.String() + " " + code
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
