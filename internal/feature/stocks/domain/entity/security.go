package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityType は証券の種類を表します。
type SecurityType string

const (
	SecurityTypeStock SecurityType = "STOCK"
	SecurityTypeETF   SecurityType = "ETF"
	SecurityTypeETN   SecurityType = "ETN"
	SecurityTypeELW   SecurityType = "ELW"
	SecurityTypeBond  SecurityType = "BOND"
)

// Valid reports whether t is a known security type.
func (t SecurityType) Valid() bool {
	switch t {
	case SecurityTypeStock, SecurityTypeETF, SecurityTypeETN, SecurityTypeELW, SecurityTypeBond:
		return true
	}
	return false
}

// MarketType は上場市場を表します。
type MarketType string

const (
	MarketKOSPI  MarketType = "KOSPI"
	MarketKOSDAQ MarketType = "KOSDAQ"
	MarketKONEX  MarketType = "KONEX"
)

// Valid reports whether m is a known market.
func (m MarketType) Valid() bool {
	switch m {
	case MarketKOSPI, MarketKOSDAQ, MarketKONEX:
		return true
	}
	return false
}

// Quote is the last-known price snapshot of a security.
type Quote struct {
	TradingDate   time.Time       `json:"trading_date"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	OpenPrice     decimal.Decimal `json:"open_price"`
	HighPrice     decimal.Decimal `json:"high_price"`
	LowPrice      decimal.Decimal `json:"low_price"`
	Volume        int64           `json:"volume"`
	PriceChange   decimal.Decimal `json:"price_change"`
	MarketCap     decimal.Decimal `json:"market_cap"`
}

// Security は検索・詳細表示の対象となる銘柄です。
type Security struct {
	Code              string       `json:"code"`
	Name              string       `json:"name"`
	NameEn            string       `json:"name_en"`
	NameInitial       string       `json:"name_initial"`
	SecurityType      SecurityType `json:"security_type"`
	MarketType        MarketType   `json:"market_type"`
	IndustryCode      string       `json:"industry_code"`
	ListingDate       time.Time    `json:"listing_date"`
	SharesOutstanding int64        `json:"shares_outstanding"`
	IsActive          bool         `json:"is_active"`
	// Quote is nil when no price has been recorded yet.
	Quote *Quote `json:"quote,omitempty"`
	// ThemeCodes are the classification nodes the security is directly tagged with.
	ThemeCodes []string `json:"theme_codes"`
}

// Catalog is a full, materialized catalog snapshot as produced by a provider.
type Catalog struct {
	Securities []Security           `json:"securities"`
	Nodes      []ClassificationNode `json:"nodes"`
}
