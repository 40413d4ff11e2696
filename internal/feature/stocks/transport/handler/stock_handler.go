// Package handler は stocks フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/h32109/stock-service/internal/api"
	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/transport/http/dto"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
)

// StockUsecase は銘柄検索・詳細のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type StockUsecase interface {
	Search(ctx context.Context, q string, page, size int) (entity.SearchPage, error)
	Detail(ctx context.Context, code string) (entity.StockDetail, error)
}

// StockHandler は銘柄に関するHTTPリクエストを処理します。
type StockHandler struct {
	uc     StockUsecase
	logger *zap.Logger
}

// NewStockHandler は新しい StockHandler を作成します。
func NewStockHandler(uc StockUsecase, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{uc: uc, logger: logger}
}

// Search は銘柄名・初声・銘柄コード・業種名で銘柄を検索します。
//
// エンドポイント例:
// GET /stocks?q=삼성&page=1&size=20
func (h *StockHandler) Search(c *gin.Context) {
	query := c.Request.URL.Query()

	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", query, &q); err != nil {
		api.AbortWithError(c, http.StatusBadRequest, api.CodeInvalidQuery, err.Error(), map[string]any{"param": "q"})
		return
	}

	// 未指定の場合はデフォルト値を使用
	var page, size *int
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &page); err != nil {
		api.AbortWithError(c, http.StatusBadRequest, api.CodeInvalidPagination, err.Error(), map[string]any{"param": "page"})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", query, &size); err != nil {
		api.AbortWithError(c, http.StatusBadRequest, api.CodeInvalidPagination, err.Error(), map[string]any{"param": "size"})
		return
	}
	p, s := usecase.DefaultPage, usecase.DefaultPageSize
	if page != nil {
		p = *page
	}
	if size != nil {
		s = *size
	}

	result, err := h.uc.Search(c.Request.Context(), q, p, s)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DataResponse[dto.SearchData]{Data: dto.NewSearchData(result)})
}

// Detail は銘柄コードに対応する銘柄詳細を返します。
// 存在しない銘柄コードは 400 (ST00) を返します。
//
// エンドポイント例:
// GET /stocks/005930
func (h *StockHandler) Detail(c *gin.Context) {
	var code string
	if err := runtime.BindStyledParameterWithOptions("simple", "stock_id", c.Param("stock_id"), &code,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}); err != nil {
		api.AbortWithError(c, http.StatusBadRequest, api.CodeStockNotFound, err.Error(), map[string]any{"param": "stock_id"})
		return
	}

	detail, err := h.uc.Detail(c.Request.Context(), code)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DataResponse[dto.StockDetail]{Data: dto.NewStockDetail(detail)})
}

// writeError はドメインエラーをHTTPステータスとエラーコードに変換します。
func (h *StockHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		api.AbortWithError(c, http.StatusBadRequest, api.CodeInvalidQuery, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidPagination):
		api.AbortWithError(c, http.StatusBadRequest, api.CodeInvalidPagination, err.Error(), nil)
	case errors.Is(err, domain.ErrStockNotFound):
		api.AbortWithError(c, http.StatusBadRequest, api.CodeStockNotFound, "stock not found", map[string]any{"stock_id": c.Param("stock_id")})
	case errors.Is(err, domain.ErrIndexUnavailable):
		h.logger.Error("search index unavailable", zap.Error(err))
		api.AbortWithError(c, http.StatusInternalServerError, api.CodeIndexUnavailable, "search index unavailable", nil)
	default:
		h.logger.Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		api.AbortWithError(c, http.StatusInternalServerError, api.CodeInternal, "internal server error", nil)
	}
}
