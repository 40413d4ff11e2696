package adapters

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to initialize test database")

	// :memory: はコネクションごとに別DBになるため1本に固定
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...), "failed to migrate tables")
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedCatalog はテスト用のカタログを保存します。
func seedCatalog(t *testing.T, repo *catalogGorm) {
	t.Helper()

	listing := day(1975, time.June, 11)
	err := repo.SaveCatalog(context.Background(), entity.Catalog{
		Nodes: []entity.ClassificationNode{
			{Code: "tech", Name: "기술", Level: entity.LevelLarge},
			{Code: "tech-001", Name: "반도체", Level: entity.LevelMedium, ParentCode: "tech"},
			{Code: "tech-001-001", Name: "메모리", Level: entity.LevelSmall, ParentCode: "tech-001"},
		},
		Securities: []entity.Security{
			{
				Code: "005930", Name: "삼성전자", NameEn: "Samsung Electronics", NameInitial: "wrong",
				SecurityType: entity.SecurityTypeStock, MarketType: entity.MarketKOSPI,
				IndustryCode: "G2510", ListingDate: listing, SharesOutstanding: 5969782550, IsActive: true,
				ThemeCodes: []string{"tech-001-001"},
				Quote: &entity.Quote{
					TradingDate:   day(2026, time.January, 2),
					CurrentPrice:  decimal.NewFromInt(70000),
					PreviousPrice: decimal.NewFromInt(69000),
					OpenPrice:     decimal.NewFromInt(69500),
					HighPrice:     decimal.NewFromInt(70500),
					LowPrice:      decimal.NewFromInt(69000),
					Volume:        1000000,
					PriceChange:   decimal.NewFromInt(1000),
					MarketCap:     decimal.NewFromInt(417884778500000),
				},
			},
			{
				Code: "999990", Name: "삼성폐지", SecurityType: entity.SecurityTypeStock,
				MarketType: entity.MarketKOSDAQ, IsActive: false,
			},
		},
	})
	require.NoError(t, err, "failed to seed catalog")
}

func TestNewCatalogRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewCatalogRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

// TestCatalogGorm_LoadCatalog は保存したカタログが読み戻せることを検証します。
func TestCatalogGorm_LoadCatalog(t *testing.T) {
	t.Parallel()

	repo := NewCatalogRepository(setupTestDB(t))
	seedCatalog(t, repo)

	cat, err := repo.LoadCatalog(context.Background())
	require.NoError(t, err)

	require.Len(t, cat.Nodes, 3)
	assert.Equal(t, entity.ClassificationNode{Code: "tech", Name: "기술", Level: entity.LevelLarge}, cat.Nodes[0])
	assert.Equal(t, "tech", cat.Nodes[1].ParentCode)

	require.Len(t, cat.Securities, 2)
	s := cat.Securities[0]
	assert.Equal(t, "005930", s.Code)
	assert.Equal(t, "ㅅㅅㅈㅈ", s.NameInitial)
	assert.Equal(t, entity.MarketKOSPI, s.MarketType)
	assert.True(t, s.ListingDate.Equal(day(1975, time.June, 11)))
	assert.Equal(t, []string{"tech-001-001"}, s.ThemeCodes)
	require.NotNil(t, s.Quote)
	assert.True(t, decimal.NewFromInt(70000).Equal(s.Quote.CurrentPrice))
	assert.Equal(t, int64(1000000), s.Quote.Volume)

	inactive := cat.Securities[1]
	assert.False(t, inactive.IsActive)
	assert.Nil(t, inactive.Quote)
	assert.Empty(t, inactive.ThemeCodes)
}

// TestCatalogGorm_LoadCatalog_LatestPrice は最新の取引日の株価のみが使われることを検証します。
func TestCatalogGorm_LoadCatalog_LatestPrice(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, repo)

	older := StockPriceModel{
		StockID: "005930", TradingDate: day(2025, time.December, 30),
		CurrentPrice: decimal.NewFromInt(60000), Volume: 1,
	}
	require.NoError(t, db.Create(&older).Error)

	cat, err := repo.LoadCatalog(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cat.Securities[0].Quote)
	assert.True(t, decimal.NewFromInt(70000).Equal(cat.Securities[0].Quote.CurrentPrice))
	assert.True(t, cat.Securities[0].Quote.TradingDate.Equal(day(2026, time.January, 2)))
}

// TestCatalogGorm_SaveCatalog_Idempotent は再保存で行が重複せず、テーマが置き換わることを検証します。
func TestCatalogGorm_SaveCatalog_Idempotent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, repo)

	err := repo.SaveCatalog(context.Background(), entity.Catalog{
		Securities: []entity.Security{
			{Code: "005930", Name: "삼성전자우", SecurityType: entity.SecurityTypeStock, MarketType: entity.MarketKOSPI, IsActive: true, ThemeCodes: []string{"tech-001"}},
		},
	})
	require.NoError(t, err)

	var stockCount, mappingCount int64
	require.NoError(t, db.Model(&StockModel{}).Count(&stockCount).Error)
	require.NoError(t, db.Model(&StockIndustryModel{}).Count(&mappingCount).Error)
	assert.Equal(t, int64(2), stockCount)
	assert.Equal(t, int64(1), mappingCount)

	cat, err := repo.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "삼성전자우", cat.Securities[0].Name)
	assert.Equal(t, "ㅅㅅㅈㅈㅇ", cat.Securities[0].NameInitial)
	assert.Equal(t, []string{"tech-001"}, cat.Securities[0].ThemeCodes)
}

// TestCatalogGorm_LoadCatalog_Empty は空のDBで空のカタログを返すことを検証します。
func TestCatalogGorm_LoadCatalog_Empty(t *testing.T) {
	t.Parallel()

	cat, err := NewCatalogRepository(setupTestDB(t)).LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cat.Securities)
	assert.Empty(t, cat.Nodes)
}

// setupMockPostgres は sqlmock を接続にした PostgreSQL ダイアレクトの gorm.DB を返します。
func setupMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// TestCatalogGorm_LoadCatalog_PostgresErrors はクエリ失敗時にどのテーブルで失敗したかを含むエラーを返すことを検証します。
func TestCatalogGorm_LoadCatalog_PostgresErrors(t *testing.T) {
	t.Parallel()

	t.Run("failure: stocks query", func(t *testing.T) {
		t.Parallel()

		db, mock := setupMockPostgres(t)
		mock.ExpectQuery(`SELECT \* FROM "stocks" ORDER BY id ASC`).
			WillReturnError(errors.New("connection reset"))

		_, err := NewCatalogRepository(db).LoadCatalog(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load stocks")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure: industries query", func(t *testing.T) {
		t.Parallel()

		db, mock := setupMockPostgres(t)
		mock.ExpectQuery(`SELECT \* FROM "stocks"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "is_active"}).AddRow("005930", "삼성전자", true))
		mock.ExpectQuery(`SELECT \* FROM "industries" ORDER BY code ASC`).
			WillReturnError(errors.New("relation \"industries\" does not exist"))

		_, err := NewCatalogRepository(db).LoadCatalog(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load industries")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestStockPriceModel_ColumnTypes は価格カラムが小数を保持できる型で定義されていることを検証します。
func TestStockPriceModel_ColumnTypes(t *testing.T) {
	t.Parallel()

	sch, err := schema.Parse(&StockPriceModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	tests := []struct {
		column string
		want   schema.DataType
	}{
		{"current_price", "numeric(16,2)"},
		{"price_change", "numeric(16,2)"},
		{"market_cap", "numeric(24,2)"},
	}
	for _, tt := range tests {
		f := sch.LookUpField(tt.column)
		require.NotNil(t, f, tt.column)
		assert.Equal(t, tt.want, f.DataType, tt.column)
	}
}
