package adapters

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockModel は stocks テーブルの行です。ID は銘柄コードです。
type StockModel struct {
	ID                 string     `gorm:"primaryKey;size:10"`
	CompanyName        string     `gorm:"size:100;not null;index"`
	CompanyNameEn      string     `gorm:"size:100"`
	CompanyNameInitial string     `gorm:"size:50;index"`
	ListingDate        *time.Time `gorm:"type:date"`
	MarketType         string     `gorm:"size:10;not null"`
	SecurityType       string     `gorm:"size:10;not null"`
	IndustryCode       string     `gorm:"size:20"`
	IsActive           bool       `gorm:"not null"`
	SharesOutstanding  int64
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

func (StockModel) TableName() string {
	return "stocks"
}

// IndustryModel は業種・テーマ階層のノードです。
type IndustryModel struct {
	Code       string    `gorm:"primaryKey;size:20"`
	Name       string    `gorm:"size:100;not null"`
	Level      string    `gorm:"size:10;not null"`
	ParentCode *string   `gorm:"size:20;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (IndustryModel) TableName() string {
	return "industries"
}

// StockIndustryModel は銘柄と業種ノードの直接の対応付けです。
type StockIndustryModel struct {
	StockID      string    `gorm:"primaryKey;size:10"`
	IndustryCode string    `gorm:"primaryKey;size:20;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (StockIndustryModel) TableName() string {
	return "stock_industry_mapping"
}

// StockPriceModel は取引日ごとの株価です。最新の取引日の行が検索結果に使われます。
type StockPriceModel struct {
	ID            uint            `gorm:"primaryKey"`
	StockID       string          `gorm:"size:10;not null;uniqueIndex:stock_price_stock_date,priority:1"`
	TradingDate   time.Time       `gorm:"type:date;not null;uniqueIndex:stock_price_stock_date,priority:2"`
	CurrentPrice  decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	PreviousPrice decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	OpenPrice     decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	HighPrice     decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	LowPrice      decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	Volume        int64           `gorm:"not null;default:0"`
	PriceChange   decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	MarketCap     decimal.Decimal `gorm:"type:numeric(24,2);not null"`
}

func (StockPriceModel) TableName() string {
	return "stock_prices"
}

// Models returns every table owned by the catalog store, for AutoMigrate.
func Models() []any {
	return []any{&StockModel{}, &IndustryModel{}, &StockIndustryModel{}, &StockPriceModel{}}
}
