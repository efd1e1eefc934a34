// Package store wraps the embedded BadgerDB key-value store used for all
// client-local persistence: history, bookmarks, and analytics.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
)

// Config selects where the store lives. InMemory is for tests and ephemeral
// sessions.
type Config struct {
	Path      string
	InMemory  bool
	KeyPrefix string
}

// Store is a thin JSON-document layer over BadgerDB.
type Store struct {
	db     *badger.DB
	prefix string
	logger *zap.Logger
}

// zapBadgerLogger adapts zap to the badger.Logger interface.
type zapBadgerLogger struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*zapBadgerLogger)(nil)

func (l *zapBadgerLogger) Errorf(msg string, args ...any)   { l.logger.Errorf(msg, args...) }
func (l *zapBadgerLogger) Warningf(msg string, args ...any) { l.logger.Warnf(msg, args...) }
func (l *zapBadgerLogger) Infof(msg string, args ...any)    { l.logger.Debugf(msg, args...) }
func (l *zapBadgerLogger) Debugf(msg string, args ...any)   { l.logger.Debugf(msg, args...) }

// Open opens (or creates) the store. The directory is created when missing.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &zapBadgerLogger{logger: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &Store{db: db, prefix: cfg.KeyPrefix, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) makeKey(key string) []byte {
	if s.prefix == "" {
		return []byte(key)
	}
	return []byte(s.prefix + ":" + key)
}

// GetJSON reads the value at key into v. Returns domain.ErrNotFound when the
// key does not exist.
func (s *Store) GetJSON(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: key %q", domain.ErrNotFound, key)
	}
	return err
}

// SetJSON writes v at key as JSON.
func (s *Store) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.makeKey(key), data)
	})
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.makeKey(key))
	})
}
