package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
	"github.com/h32109/stock-service/internal/shared/hangul"
)

const batchSize = 500

type catalogGorm struct {
	db *gorm.DB
}

var _ usecase.CatalogProvider = (*catalogGorm)(nil)

// NewCatalogRepository は gorm ベースのカタログストアを作成します。
// 本番は PostgreSQL、テストは SQLite で動作します。
func NewCatalogRepository(db *gorm.DB) *catalogGorm {
	return &catalogGorm{db: db}
}

// LoadCatalog reads every security, classification node, theme association
// and the latest quote per security.
func (r *catalogGorm) LoadCatalog(ctx context.Context) (entity.Catalog, error) {
	db := r.db.WithContext(ctx)

	var stocks []StockModel
	if err := db.Order("id ASC").Find(&stocks).Error; err != nil {
		return entity.Catalog{}, fmt.Errorf("load stocks: %w", err)
	}

	var industries []IndustryModel
	if err := db.Order("code ASC").Find(&industries).Error; err != nil {
		return entity.Catalog{}, fmt.Errorf("load industries: %w", err)
	}

	var mappings []StockIndustryModel
	if err := db.Order("stock_id ASC, industry_code ASC").Find(&mappings).Error; err != nil {
		return entity.Catalog{}, fmt.Errorf("load stock industry mapping: %w", err)
	}

	var prices []StockPriceModel
	if err := db.Table("stock_prices AS p").
		Select("p.*").
		Joins("JOIN (SELECT stock_id, MAX(trading_date) AS trading_date FROM stock_prices GROUP BY stock_id) latest " +
			"ON latest.stock_id = p.stock_id AND latest.trading_date = p.trading_date").
		Find(&prices).Error; err != nil {
		return entity.Catalog{}, fmt.Errorf("load latest prices: %w", err)
	}

	themes := make(map[string][]string, len(stocks))
	for _, m := range mappings {
		themes[m.StockID] = append(themes[m.StockID], m.IndustryCode)
	}
	quotes := make(map[string]*entity.Quote, len(prices))
	for i := range prices {
		quotes[prices[i].StockID] = toQuote(prices[i])
	}

	out := entity.Catalog{
		Securities: make([]entity.Security, 0, len(stocks)),
		Nodes:      make([]entity.ClassificationNode, 0, len(industries)),
	}
	for _, s := range stocks {
		out.Securities = append(out.Securities, toSecurity(s, themes[s.ID], quotes[s.ID]))
	}
	for _, n := range industries {
		out.Nodes = append(out.Nodes, toNode(n))
	}
	return out, nil
}

// SaveCatalog upserts catalog in one transaction. Theme associations of the
// given securities are replaced; other securities are left untouched.
func (r *catalogGorm) SaveCatalog(ctx context.Context, catalog entity.Catalog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(catalog.Nodes) > 0 {
			nodes := make([]IndustryModel, 0, len(catalog.Nodes))
			for _, n := range catalog.Nodes {
				nodes = append(nodes, toIndustryModel(n))
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				UpdateAll: true,
			}).CreateInBatches(&nodes, batchSize).Error; err != nil {
				return fmt.Errorf("upsert industries: %w", err)
			}
		}

		if len(catalog.Securities) == 0 {
			return nil
		}

		stocks := make([]StockModel, 0, len(catalog.Securities))
		codes := make([]string, 0, len(catalog.Securities))
		var mappings []StockIndustryModel
		var prices []StockPriceModel
		for _, s := range catalog.Securities {
			stocks = append(stocks, toStockModel(s))
			codes = append(codes, s.Code)
			for _, node := range s.ThemeCodes {
				mappings = append(mappings, StockIndustryModel{StockID: s.Code, IndustryCode: node})
			}
			if s.Quote != nil {
				prices = append(prices, toPriceModel(s.Code, *s.Quote))
			}
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&stocks, batchSize).Error; err != nil {
			return fmt.Errorf("upsert stocks: %w", err)
		}

		if err := tx.Where("stock_id IN ?", codes).Delete(&StockIndustryModel{}).Error; err != nil {
			return fmt.Errorf("clear stock industry mapping: %w", err)
		}
		if len(mappings) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(&mappings, batchSize).Error; err != nil {
				return fmt.Errorf("insert stock industry mapping: %w", err)
			}
		}

		if len(prices) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "stock_id"}, {Name: "trading_date"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"current_price", "previous_price", "open_price", "high_price",
					"low_price", "volume", "price_change", "market_cap",
				}),
			}).CreateInBatches(&prices, batchSize).Error; err != nil {
				return fmt.Errorf("upsert stock prices: %w", err)
			}
		}
		return nil
	})
}

func toSecurity(m StockModel, themes []string, quote *entity.Quote) entity.Security {
	s := entity.Security{
		Code:              m.ID,
		Name:              m.CompanyName,
		NameEn:            m.CompanyNameEn,
		NameInitial:       m.CompanyNameInitial,
		SecurityType:      entity.SecurityType(m.SecurityType),
		MarketType:        entity.MarketType(m.MarketType),
		IndustryCode:      m.IndustryCode,
		SharesOutstanding: m.SharesOutstanding,
		IsActive:          m.IsActive,
		Quote:             quote,
		ThemeCodes:        themes,
	}
	if m.ListingDate != nil {
		s.ListingDate = *m.ListingDate
	}
	return s
}

func toStockModel(s entity.Security) StockModel {
	m := StockModel{
		ID:                 s.Code,
		CompanyName:        s.Name,
		CompanyNameEn:      s.NameEn,
		CompanyNameInitial: hangul.Initials(s.Name),
		MarketType:         string(s.MarketType),
		SecurityType:       string(s.SecurityType),
		IndustryCode:       s.IndustryCode,
		IsActive:           s.IsActive,
		SharesOutstanding:  s.SharesOutstanding,
	}
	if !s.ListingDate.IsZero() {
		d := s.ListingDate
		m.ListingDate = &d
	}
	return m
}

func toNode(m IndustryModel) entity.ClassificationNode {
	n := entity.ClassificationNode{Code: m.Code, Name: m.Name, Level: entity.Level(m.Level)}
	if m.ParentCode != nil {
		n.ParentCode = *m.ParentCode
	}
	return n
}

func toIndustryModel(n entity.ClassificationNode) IndustryModel {
	m := IndustryModel{Code: n.Code, Name: n.Name, Level: string(n.Level)}
	if n.ParentCode != "" {
		p := n.ParentCode
		m.ParentCode = &p
	}
	return m
}

func toQuote(m StockPriceModel) *entity.Quote {
	return &entity.Quote{
		TradingDate:   m.TradingDate,
		CurrentPrice:  m.CurrentPrice,
		PreviousPrice: m.PreviousPrice,
		OpenPrice:     m.OpenPrice,
		HighPrice:     m.HighPrice,
		LowPrice:      m.LowPrice,
		Volume:        m.Volume,
		PriceChange:   m.PriceChange,
		MarketCap:     m.MarketCap,
	}
}

func toPriceModel(code string, q entity.Quote) StockPriceModel {
	return StockPriceModel{
		StockID:       code,
		TradingDate:   truncateDay(q.TradingDate),
		CurrentPrice:  q.CurrentPrice,
		PreviousPrice: q.PreviousPrice,
		OpenPrice:     q.OpenPrice,
		HighPrice:     q.HighPrice,
		LowPrice:      q.LowPrice,
		Volume:        q.Volume,
		PriceChange:   q.PriceChange,
		MarketCap:     q.MarketCap,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
