package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
)

// testCatalog はテスト用の最小カタログを返します。
func testCatalog() entity.Catalog {
	return entity.Catalog{
		Nodes: []entity.ClassificationNode{
			{Code: "tech", Name: "기술", Level: entity.LevelLarge},
			{Code: "tech-001", Name: "반도체", Level: entity.LevelMedium, ParentCode: "tech"},
			{Code: "tech-001-001", Name: "메모리", Level: entity.LevelSmall, ParentCode: "tech-001"},
		},
		Securities: []entity.Security{
			{Code: "005930", Name: "삼성전자", NameEn: "Samsung Electronics", IsActive: true, ThemeCodes: []string{"tech-001-001"}},
			{Code: "000660", Name: "SK하이닉스", NameEn: "SK hynix", IsActive: true, ThemeCodes: []string{"tech-001-001"}},
			{Code: "009150", Name: "삼성전기", NameEn: "Samsung Electro-Mechanics", IsActive: true},
			{Code: "999990", Name: "삼성폐지", NameEn: "Samsung Delisted", IsActive: false},
		},
	}
}

// loadedHolder はテスト用カタログを読み込んだHolderを返します。
func loadedHolder(t *testing.T) *engine.Holder {
	t.Helper()
	snap, err := engine.BuildSnapshot(testCatalog(), "v1", time.Now())
	require.NoError(t, err)
	h := engine.NewHolder()
	h.Swap(snap)
	return h
}

// TestStockUsecase_Search は検索ユースケースの各種シナリオを検証します。
func TestStockUsecase_Search(t *testing.T) {
	t.Parallel()

	uc := NewStockUsecase(loadedHolder(t), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		q         string
		page      int
		size      int
		wantCodes []string
		wantTotal int
		wantErr   error
	}{
		{name: "success: initial abbreviation", q: "ㅅㅅㅈㅈ", page: 1, size: 20, wantCodes: []string{"005930"}, wantTotal: 1},
		{name: "success: exact code ranks first", q: "005930", page: 1, size: 20, wantCodes: []string{"005930"}, wantTotal: 1},
		{name: "success: theme", q: "메모리", page: 1, size: 20, wantCodes: []string{"000660", "005930"}, wantTotal: 2},
		{name: "success: second page", q: "삼성", page: 2, size: 1, wantCodes: []string{"009150"}, wantTotal: 2},
		{name: "success: page past the end", q: "삼성", page: 3, size: 1, wantCodes: []string{}, wantTotal: 2},
		{name: "failure: empty query", q: "", page: 1, size: 20, wantErr: domain.ErrInvalidQuery},
		{name: "failure: size too large", q: "삼성", page: 1, size: 101, wantErr: domain.ErrInvalidPagination},
		{name: "failure: page zero", q: "삼성", page: 0, size: 20, wantErr: domain.ErrInvalidPagination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := uc.Search(ctx, tt.q, tt.page, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			codes := []string{}
			for _, it := range page.Items {
				codes = append(codes, it.Security.Code)
			}
			assert.Equal(t, tt.wantCodes, codes)
			assert.Equal(t, tt.wantTotal, page.TotalCount)
		})
	}
}

// TestStockUsecase_NoSnapshot はスナップショット未ロード時に ErrIndexUnavailable を返すことを検証します。
func TestStockUsecase_NoSnapshot(t *testing.T) {
	t.Parallel()

	uc := NewStockUsecase(engine.NewHolder(), nil, nil)

	_, err := uc.Search(context.Background(), "삼성", 1, 20)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	_, err = uc.Detail(context.Background(), "005930")
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	assert.Equal(t, "", uc.SnapshotVersion())
}

// TestStockUsecase_Detail は詳細取得で非アクティブ銘柄も返されることを検証します。
func TestStockUsecase_Detail(t *testing.T) {
	t.Parallel()

	uc := NewStockUsecase(loadedHolder(t), nil, nil)
	ctx := context.Background()

	d, err := uc.Detail(ctx, "999990")
	require.NoError(t, err)
	assert.False(t, d.Security.IsActive)

	page, err := uc.Search(ctx, "삼성폐지", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)

	_, err = uc.Detail(ctx, "000000")
	assert.ErrorIs(t, err, domain.ErrStockNotFound)

	assert.Equal(t, "v1", uc.SnapshotVersion())
}
