package engine

import (
	"fmt"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

// Detail assembles the full record for code. Inactive securities are
// returned; they are only hidden from search.
func Detail(s *Snapshot, code string) (entity.StockDetail, error) {
	if err := s.usable(); err != nil {
		return entity.StockDetail{}, err
	}
	sec, ok := s.Index.ByCode(code)
	if !ok {
		sec, ok = s.Index.ByCodeKey(Normalize(code))
	}
	if !ok {
		return entity.StockDetail{}, fmt.Errorf("%w: %q", domain.ErrStockNotFound, code)
	}
	return entity.StockDetail{Security: sec, Themes: s.Themes(sec)}, nil
}
