// Package dto は銘柄APIのレスポンス形式を定義します。
package dto

import (
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

const dateLayout = "2006-01-02"

// IndustryResponse は業種・テーマノードのコードと名前です。
type IndustryResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ThemeResponse は大・中・小分類の組です。該当しない階層は null です。
type ThemeResponse struct {
	Large  *IndustryResponse `json:"large"`
	Medium *IndustryResponse `json:"medium"`
	Small  *IndustryResponse `json:"small"`
}

// StockSearchItem は検索結果の1件です。
type StockSearchItem struct {
	ID                 string          `json:"id"`
	CompanyName        string          `json:"company_name"`
	CompanyNameEn      string          `json:"company_name_en"`
	CompanyNameInitial string          `json:"company_name_initial"`
	SecurityType       string          `json:"security_type"`
	MarketType         string          `json:"market_type"`
	CurrentPrice       float64         `json:"current_price"`
	PriceChange        float64         `json:"price_change"`
	Volume             int64           `json:"volume"`
	MarketCap          float64         `json:"market_cap"`
	Themes             []ThemeResponse `json:"themes"`
	MatchType          []string        `json:"match_type"`
}

// SearchData は GET /stocks の data 部分です。
type SearchData struct {
	Stocks     []StockSearchItem `json:"stocks"`
	TotalCount int               `json:"total_count"`
}

// StockDetail は GET /stocks/{stock_id} の data 部分です。
type StockDetail struct {
	ID                 string          `json:"id"`
	CompanyName        string          `json:"company_name"`
	CompanyNameEn      string          `json:"company_name_en"`
	CompanyNameInitial string          `json:"company_name_initial"`
	ListingDate        string          `json:"listing_date"`
	MarketType         string          `json:"market_type"`
	SecurityType       string          `json:"security_type"`
	IndustryCode       string          `json:"industry_code"`
	IsActive           bool            `json:"is_active"`
	CurrentPrice       float64         `json:"current_price"`
	PreviousPrice      float64         `json:"previous_price"`
	OpenPrice          float64         `json:"open_price"`
	HighPrice          float64         `json:"high_price"`
	LowPrice           float64         `json:"low_price"`
	Volume             int64           `json:"volume"`
	PriceChange        float64         `json:"price_change"`
	MarketCap          float64         `json:"market_cap"`
	SharesOutstanding  int64           `json:"shares_outstanding"`
	TradingDate        string          `json:"trading_date"`
	Themes             []ThemeResponse `json:"themes"`
}

// NewSearchData は検索結果ページをレスポンス形式に変換します。
func NewSearchData(page entity.SearchPage) SearchData {
	out := SearchData{
		Stocks:     make([]StockSearchItem, 0, len(page.Items)),
		TotalCount: page.TotalCount,
	}
	for _, r := range page.Items {
		s := r.Security
		item := StockSearchItem{
			ID:                 s.Code,
			CompanyName:        s.Name,
			CompanyNameEn:      s.NameEn,
			CompanyNameInitial: s.NameInitial,
			SecurityType:       string(s.SecurityType),
			MarketType:         string(s.MarketType),
			Themes:             NewThemes(r.Themes),
			MatchType:          make([]string, 0, len(r.MatchKinds)),
		}
		if q := s.Quote; q != nil {
			item.CurrentPrice = q.CurrentPrice.InexactFloat64()
			item.PriceChange = q.PriceChange.InexactFloat64()
			item.Volume = q.Volume
			item.MarketCap = q.MarketCap.InexactFloat64()
		}
		for _, k := range r.MatchKinds {
			item.MatchType = append(item.MatchType, string(k))
		}
		out.Stocks = append(out.Stocks, item)
	}
	return out
}

// NewStockDetail は銘柄詳細をレスポンス形式に変換します。
// 株価がない銘柄は価格を0、trading_date を空文字で返します。
func NewStockDetail(d entity.StockDetail) StockDetail {
	s := d.Security
	out := StockDetail{
		ID:                 s.Code,
		CompanyName:        s.Name,
		CompanyNameEn:      s.NameEn,
		CompanyNameInitial: s.NameInitial,
		MarketType:         string(s.MarketType),
		SecurityType:       string(s.SecurityType),
		IndustryCode:       s.IndustryCode,
		IsActive:           s.IsActive,
		SharesOutstanding:  s.SharesOutstanding,
		Themes:             NewThemes(d.Themes),
	}
	if !s.ListingDate.IsZero() {
		out.ListingDate = s.ListingDate.Format(dateLayout)
	}
	if q := s.Quote; q != nil {
		out.CurrentPrice = q.CurrentPrice.InexactFloat64()
		out.PreviousPrice = q.PreviousPrice.InexactFloat64()
		out.OpenPrice = q.OpenPrice.InexactFloat64()
		out.HighPrice = q.HighPrice.InexactFloat64()
		out.LowPrice = q.LowPrice.InexactFloat64()
		out.Volume = q.Volume
		out.PriceChange = q.PriceChange.InexactFloat64()
		out.MarketCap = q.MarketCap.InexactFloat64()
		if !q.TradingDate.IsZero() {
			out.TradingDate = q.TradingDate.Format(dateLayout)
		}
	}
	return out
}

// NewThemes converts projected themes; the result is never nil.
func NewThemes(themes []entity.Theme) []ThemeResponse {
	out := make([]ThemeResponse, 0, len(themes))
	for _, t := range themes {
		out = append(out, ThemeResponse{
			Large:  ref(t.Large),
			Medium: ref(t.Medium),
			Small:  ref(t.Small),
		})
	}
	return out
}

func ref(n *entity.NodeRef) *IndustryResponse {
	if n == nil {
		return nil
	}
	return &IndustryResponse{Code: n.Code, Name: n.Name}
}
