package usecase

import (
	"context"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
)

const (
	// DefaultPage は page 未指定時に使用されるページ番号です。
	DefaultPage = 1
	// DefaultPageSize は size 未指定時に使用される1ページあたりの件数です。
	DefaultPageSize = 20
	// MaxPageSize は1ページあたりの最大件数です。
	MaxPageSize = engine.MaxPageSize
)

// SnapshotSource returns the snapshot currently being served.
type SnapshotSource interface {
	Load() *engine.Snapshot
}

// StockService is the read API served by the HTTP layer.
type StockService interface {
	Search(ctx context.Context, q string, page, size int) (entity.SearchPage, error)
	Detail(ctx context.Context, code string) (entity.StockDetail, error)
	SnapshotVersion() string
}

// StockUsecase は銘柄検索と銘柄詳細のユースケースを提供します。
type StockUsecase struct {
	snapshots SnapshotSource
	matcher   *engine.Matcher
	ranker    *engine.Ranker
}

var _ StockService = (*StockUsecase)(nil)

// NewStockUsecase は新しい StockUsecase を作成します。
// matcher / ranker が nil の場合はデフォルト設定を使用します。
func NewStockUsecase(src SnapshotSource, matcher *engine.Matcher, ranker *engine.Ranker) *StockUsecase {
	if matcher == nil {
		matcher = engine.NewMatcher()
	}
	if ranker == nil {
		ranker = engine.NewRanker(nil)
	}
	return &StockUsecase{snapshots: src, matcher: matcher, ranker: ranker}
}

// Search はクエリに一致する有効な銘柄をランキング順にページングして返します。
// リクエスト中は同一のスナップショットを使用します。
func (u *StockUsecase) Search(ctx context.Context, q string, page, size int) (entity.SearchPage, error) {
	if err := engine.ValidateQuery(q); err != nil {
		return entity.SearchPage{}, err
	}
	if err := engine.ValidatePage(page, size); err != nil {
		return entity.SearchPage{}, err
	}

	snap := u.snapshots.Load()
	matches, err := u.matcher.Match(snap, q)
	if err != nil {
		return entity.SearchPage{}, err
	}
	return u.ranker.RankAndPaginate(snap, matches, page, size)
}

// Detail は銘柄コードに対応する詳細情報を返します。非アクティブな銘柄も返します。
func (u *StockUsecase) Detail(ctx context.Context, code string) (entity.StockDetail, error) {
	return engine.Detail(u.snapshots.Load(), code)
}

// SnapshotVersion returns the version of the served snapshot, or "" before
// the first load.
func (u *StockUsecase) SnapshotVersion() string {
	if snap := u.snapshots.Load(); snap != nil {
		return snap.Version
	}
	return ""
}
