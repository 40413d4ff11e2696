package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
)

// CatalogProvider materializes the full catalog (securities + classification nodes).
type CatalogProvider interface {
	LoadCatalog(ctx context.Context) (entity.Catalog, error)
}

// SnapshotStore persists the last catalog that built successfully.
type SnapshotStore interface {
	Save(ctx context.Context, version string, catalog entity.Catalog) error
	Load(ctx context.Context) (string, entity.Catalog, error)
}

// SnapshotPublisher is where built snapshots are swapped in.
type SnapshotPublisher interface {
	Load() *engine.Snapshot
	Swap(s *engine.Snapshot) *engine.Snapshot
}

// SwapHook runs after a new snapshot is published. previous is nil on the first load.
type SwapHook func(ctx context.Context, previous, current *engine.Snapshot)

// RefreshUsecase rebuilds the search snapshot from the catalog provider.
type RefreshUsecase struct {
	provider  CatalogProvider
	publisher SnapshotPublisher
	store     SnapshotStore
	hooks     []SwapHook
	logger    *zap.Logger
	now       func() time.Time
	version   func() string

	mu sync.Mutex
}

// RefreshOption configures a RefreshUsecase.
type RefreshOption func(*RefreshUsecase)

// WithSnapshotStore enables last-known-good persistence.
func WithSnapshotStore(store SnapshotStore) RefreshOption {
	return func(u *RefreshUsecase) { u.store = store }
}

// WithSwapHook registers fn to run after each swap.
func WithSwapHook(fn SwapHook) RefreshOption {
	return func(u *RefreshUsecase) { u.hooks = append(u.hooks, fn) }
}

// WithRefreshLogger sets the logger.
func WithRefreshLogger(logger *zap.Logger) RefreshOption {
	return func(u *RefreshUsecase) { u.logger = logger }
}

// WithVersionFunc overrides snapshot version generation.
func WithVersionFunc(fn func() string) RefreshOption {
	return func(u *RefreshUsecase) { u.version = fn }
}

// NewRefreshUsecase returns a RefreshUsecase publishing into publisher.
func NewRefreshUsecase(provider CatalogProvider, publisher SnapshotPublisher, opts ...RefreshOption) *RefreshUsecase {
	u := &RefreshUsecase{
		provider:  provider,
		publisher: publisher,
		logger:    zap.NewNop(),
		now:       time.Now,
		version:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Refresh loads the catalog, builds a snapshot and swaps it in. On any
// failure the current snapshot stays in place.
func (u *RefreshUsecase) Refresh(ctx context.Context) (*engine.Snapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	start := u.now()
	catalog, err := u.provider.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	snap, err := u.publish(ctx, u.version(), catalog)
	if err != nil {
		return nil, err
	}

	if u.store != nil {
		if err := u.store.Save(ctx, snap.Version, catalog); err != nil {
			u.logger.Warn("failed to persist snapshot", zap.String("version", snap.Version), zap.Error(err))
		}
	}
	u.logger.Info("catalog snapshot refreshed",
		zap.String("version", snap.Version),
		zap.Int("securities", snap.Index.Len()),
		zap.Int("nodes", snap.Hierarchy.Len()),
		zap.Duration("elapsed", u.now().Sub(start)),
	)
	return snap, nil
}

// Bootstrap loads the first snapshot. When the provider fails it falls back
// to the persisted last-known-good catalog, if any.
func (u *RefreshUsecase) Bootstrap(ctx context.Context) error {
	_, err := u.Refresh(ctx)
	if err == nil {
		return nil
	}
	if u.store == nil {
		return err
	}
	u.logger.Warn("catalog provider failed, trying persisted snapshot", zap.Error(err))

	u.mu.Lock()
	defer u.mu.Unlock()
	version, catalog, lerr := u.store.Load(ctx)
	if lerr != nil {
		return errors.Join(err, fmt.Errorf("load persisted snapshot: %w", lerr))
	}
	snap, perr := u.publish(ctx, version, catalog)
	if perr != nil {
		return errors.Join(err, perr)
	}
	u.logger.Warn("serving persisted snapshot", zap.String("version", snap.Version), zap.Int("securities", snap.Index.Len()))
	return nil
}

// RunPeriodic refreshes every interval until ctx is done. Failures are logged.
func (u *RefreshUsecase) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := u.Refresh(ctx); err != nil {
				u.logger.Error("periodic catalog refresh failed", zap.Error(err))
			}
		}
	}
}

func (u *RefreshUsecase) publish(ctx context.Context, version string, catalog entity.Catalog) (*engine.Snapshot, error) {
	snap, err := engine.BuildSnapshot(catalog, version, u.now())
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	if len(snap.DanglingThemes) > 0 {
		u.logger.Warn("dropped theme associations to unknown nodes",
			zap.Int("count", len(snap.DanglingThemes)),
			zap.Strings("associations", snap.DanglingThemes),
		)
	}
	previous := u.publisher.Swap(snap)
	for _, hook := range u.hooks {
		hook(ctx, previous, snap)
	}
	return snap, nil
}
