// Package snapshotstore persists the last catalog that built successfully in an
// embedded badger database, so a restart can serve searches while the catalog
// source is down.
package snapshotstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no persisted snapshot")

var currentKey = []byte("snapshot/current")

type record struct {
	Version string         `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Catalog entity.Catalog `json:"catalog"`
}

// BadgerStore implements usecase.SnapshotStore.
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ usecase.SnapshotStore = (*BadgerStore)(nil)

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...any)    { l.s.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }

// Open opens (creating if needed) a store under dir. An empty dir opens an
// in-memory store.
func Open(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &BadgerStore{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Save replaces the persisted catalog.
func (s *BadgerStore) Save(ctx context.Context, version string, catalog entity.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(record{Version: version, SavedAt: s.now(), Catalog: catalog})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(currentKey, b)
	}); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Debug("snapshot persisted", zap.String("version", version), zap.Int("bytes", len(b)))
	return nil
}

// Load returns the persisted version and catalog, or ErrNoSnapshot.
func (s *BadgerStore) Load(ctx context.Context) (string, entity.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return "", entity.Catalog{}, err
	}
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(currentKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", entity.Catalog{}, ErrNoSnapshot
	}
	if err != nil {
		return "", entity.Catalog{}, fmt.Errorf("load snapshot: %w", err)
	}
	return rec.Version, rec.Catalog, nil
}
