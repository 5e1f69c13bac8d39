package tiles

import (
	"errors"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/tnoatlas/atlas/internal/logger"
)

// DefaultStoreTTL is how long a tile stays on disk
const DefaultStoreTTL = 7 * 24 * time.Hour

// Store persists tile images between runs
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenStore opens the tile store in dir. An empty dir keeps it in memory.
func OpenStore(dir string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	opts.NumVersionsToKeep = 1
	opts.CompactL0OnClose = true
	opts.Logger = badgerLogger{logger.Get().Named("badger").Sugar()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultStoreTTL
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Get returns the stored tile for key
func (s *Store) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put stores a tile with the store TTL
func (s *Store) Put(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(s.ttl))
	})
}

// Close flushes and closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's own logging into zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }
