package catalogapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
	"github.com/h32109/stock-service/internal/platform/externalapi/catalogapi/dto"
	"github.com/h32109/stock-service/internal/shared/ratelimiter"
)

// RemoteCatalog はリモートのカタログAPIから全銘柄と業種階層を取得するCatalogProvider実装です。
type RemoteCatalog struct {
	cfg     Config
	client  *resty.Client
	limiter ratelimiter.RateLimiterInterface
	logger  *zap.Logger
}

var _ usecase.CatalogProvider = (*RemoteCatalog)(nil)

// NewRemoteCatalog は指定されたHTTPクライアントをrestyでラップしてRemoteCatalogを生成します。
func NewRemoteCatalog(cfg Config, httpClient *http.Client, limiter ratelimiter.RateLimiterInterface, logger *zap.Logger) *RemoteCatalog {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.NewWithClient(httpClient).
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}
	return &RemoteCatalog{cfg: cfg, client: client, limiter: limiter, logger: logger}
}

// LoadCatalog pages through /v1/securities and then fetches /v1/classifications.
func (c *RemoteCatalog) LoadCatalog(ctx context.Context) (entity.Catalog, error) {
	var out entity.Catalog

	for page := 1; ; page++ {
		if page > maxPages {
			return entity.Catalog{}, fmt.Errorf("catalog api: more than %d pages", maxPages)
		}
		c.wait()

		var body dto.SecuritiesResponse
		if err := c.get(ctx, "/v1/securities", map[string]string{
			"page": strconv.Itoa(page),
			"size": strconv.Itoa(c.cfg.PageSize),
		}, &body); err != nil {
			return entity.Catalog{}, err
		}
		if body.Status == "error" {
			return entity.Catalog{}, fmt.Errorf("catalog api: %s", body.Message)
		}
		for _, item := range body.Data {
			s, err := toSecurity(item)
			if err != nil {
				return entity.Catalog{}, fmt.Errorf("security %q: %w", item.Code, err)
			}
			out.Securities = append(out.Securities, s)
		}
		c.logger.Debug("catalog page fetched", zap.Int("page", page), zap.Int("items", len(body.Data)))
		if !body.HasNext || len(body.Data) == 0 {
			break
		}
	}

	c.wait()
	var nodes dto.ClassificationsResponse
	if err := c.get(ctx, "/v1/classifications", nil, &nodes); err != nil {
		return entity.Catalog{}, err
	}
	if nodes.Status == "error" {
		return entity.Catalog{}, fmt.Errorf("catalog api: %s", nodes.Message)
	}
	for _, n := range nodes.Data {
		out.Nodes = append(out.Nodes, entity.ClassificationNode{
			Code:       n.Code,
			Name:       n.Name,
			Level:      entity.Level(n.Level),
			ParentCode: n.ParentCode,
		})
	}
	return out, nil
}

func (c *RemoteCatalog) wait() {
	if c.limiter != nil {
		c.limiter.WaitIfNeeded()
	}
}

func (c *RemoteCatalog) get(ctx context.Context, path string, params map[string]string, result any) error {
	req := c.client.R().SetContext(ctx).SetResult(result)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("catalog api %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("catalog api http %d", resp.StatusCode())
	}
	return nil
}

func toSecurity(item dto.SecurityItem) (entity.Security, error) {
	s := entity.Security{
		Code:              item.Code,
		Name:              item.Name,
		NameEn:            item.NameEn,
		SecurityType:      entity.SecurityType(item.SecurityType),
		MarketType:        entity.MarketType(item.MarketType),
		IndustryCode:      item.IndustryCode,
		SharesOutstanding: item.SharesOutstanding,
		IsActive:          item.IsActive,
		ThemeCodes:        item.ThemeCodes,
	}
	if item.ListingDate != "" {
		t, err := time.Parse("2006-01-02", item.ListingDate)
		if err != nil {
			return s, fmt.Errorf("parse listing_date %q: %w", item.ListingDate, err)
		}
		s.ListingDate = t
	}
	if q := item.Quote; q != nil {
		td, err := time.Parse("2006-01-02", q.TradingDate)
		if err != nil {
			return s, fmt.Errorf("parse trading_date %q: %w", q.TradingDate, err)
		}
		s.Quote = &entity.Quote{
			TradingDate:   td,
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
	return s, nil
}
