// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package tagstore persists tag vector records in BadgerDB.
//
// Records are stored under "tagvec:<tag id, zero-padded to 20 digits>" so
// a prefix scan returns them in tag id order. Values are JSON encoded
// {tag_id, tag_name, vector}. A record is written once and never replaced.
package tagstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/recommend"
)

const keyPrefix = "tagvec:"

// Store implements recommend.TagVectorStore on BadgerDB.
type Store struct {
	db     *badger.DB
	owned  bool
	logger zerolog.Logger
}

var _ recommend.TagVectorStore = (*Store)(nil)

// Open opens (or creates) the store described by cfg. The caller must Close it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *config.TagStoreConfig, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "tagstore").Logger()

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}

	logger.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("tag vector store opened")
	return &Store{db: db, owned: true, logger: logger}, nil
}

// New wraps an already open database. Close does not close db.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(db *badger.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger.With().Str("component", "tagstore").Logger()}
}

// Close closes the database if Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func recordKey(tagID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, tagID))
}

// FetchAllTagVectors returns every record in tag id order. Negative ids
// are not supported by the key layout.
func (s *Store) FetchAllTagVectors(ctx context.Context) ([]recommend.TagVectorRecord, error) {
	records := []recommend.TagVectorRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec recommend.TagVectorRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tag vectors: %w", err)
	}
	return records, nil
}

// PersistTagVector stores rec unless a record for rec.TagID exists.
//
//nolint:gocritic // record passed by value to satisfy recommend.TagVectorStore
func (s *Store) PersistTagVector(ctx context.Context, rec recommend.TagVectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.TagID < 0 {
		return fmt.Errorf("tag id must be non-negative, got %d", rec.TagID)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal tag vector: %w", err)
	}

	key := recordKey(rec.TagID)
	written := false
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get tag vector: %w", err)
		}
		written = true
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("persist tag vector %d: %w", rec.TagID, err)
	}

	if written {
		s.logger.Debug().Int64("tag_id", rec.TagID).Str("tag", rec.TagName).Msg("tag vector persisted")
	}
	return nil
}

// badgerLogger routes badger's internal logging to zerolog. Info and
// debug chatter is demoted to debug.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}
