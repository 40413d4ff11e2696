// Package dto defines data transfer objects for the remote catalog API responses.
package dto

import "github.com/shopspring/decimal"

// QuoteItem is the latest quote attached to a security.
type QuoteItem struct {
	TradingDate   string          `json:"trading_date"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	OpenPrice     decimal.Decimal `json:"open_price"`
	HighPrice     decimal.Decimal `json:"high_price"`
	LowPrice      decimal.Decimal `json:"low_price"`
	Volume        int64           `json:"volume"`
	PriceChange   decimal.Decimal `json:"price_change"`
	MarketCap     decimal.Decimal `json:"market_cap"`
}

// SecurityItem is one listed security.
type SecurityItem struct {
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	NameEn            string     `json:"name_en"`
	SecurityType      string     `json:"security_type"`
	MarketType        string     `json:"market_type"`
	IndustryCode      string     `json:"industry_code"`
	ListingDate       string     `json:"listing_date"`
	SharesOutstanding int64      `json:"shares_outstanding"`
	IsActive          bool       `json:"is_active"`
	ThemeCodes        []string   `json:"theme_codes"`
	Quote             *QuoteItem `json:"quote"`
}

// SecuritiesResponse represents one page of GET /v1/securities.
type SecuritiesResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    []SecurityItem `json:"data"`
	HasNext bool           `json:"has_next"`
}

// ClassificationItem is one industry/theme node.
type ClassificationItem struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Level      string `json:"level"`
	ParentCode string `json:"parent_code"`
}

// ClassificationsResponse represents GET /v1/classifications.
type ClassificationsResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message,omitempty"`
	Data    []ClassificationItem `json:"data"`
}
