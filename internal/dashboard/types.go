package dashboard

import "github.com/shopspring/decimal"

// PriceTable maps asset identifier -> currency code -> price.
type PriceTable map[string]map[string]decimal.Decimal

// RateTable maps currency code -> exchange rate relative to the base.
type RateTable map[string]decimal.Decimal

// Article is one news headline.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Card is a formatted tile on the dashboard.
type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
}
