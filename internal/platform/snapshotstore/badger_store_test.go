package snapshotstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

func sampleCatalog() entity.Catalog {
	return entity.Catalog{
		Securities: []entity.Security{{
			Code:         "005930",
			Name:         "삼성전자",
			SecurityType: entity.SecurityTypeStock,
			MarketType:   entity.MarketKOSPI,
			IsActive:     true,
			ListingDate:  time.Date(1975, 6, 11, 0, 0, 0, 0, time.UTC),
			ThemeCodes:   []string{"tech-001"},
			Quote: &entity.Quote{
				TradingDate:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
				CurrentPrice: decimal.RequireFromString("70100.50"),
				Volume:       1200,
			},
		}},
		Nodes: []entity.ClassificationNode{
			{Code: "tech", Name: "기술", Level: entity.LevelLarge},
			{Code: "tech-001", Name: "반도체", Level: entity.LevelMedium, ParentCode: "tech"},
		},
	}
}

func openMemory(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_LoadEmpty(t *testing.T) {
	t.Parallel()

	_, _, err := openMemory(t).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestBadgerStore_SaveLoad(t *testing.T) {
	t.Parallel()

	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "v1", entity.Catalog{}))
	require.NoError(t, s.Save(ctx, "v2", sampleCatalog()))

	version, cat, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", version)
	require.Len(t, cat.Securities, 1)
	got := cat.Securities[0]
	assert.Equal(t, "삼성전자", got.Name)
	assert.Equal(t, []string{"tech-001"}, got.ThemeCodes)
	require.NotNil(t, got.Quote)
	assert.True(t, decimal.RequireFromString("70100.5").Equal(got.Quote.CurrentPrice))
	assert.Equal(t, sampleCatalog().Nodes, cat.Nodes)
}

func TestBadgerStore_CanceledContext(t *testing.T) {
	t.Parallel()

	s := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, "v1", sampleCatalog()), context.Canceled)
	_, _, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "v7", sampleCatalog()))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	version, cat, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v7", version)
	assert.Len(t, cat.Securities, 1)
}
