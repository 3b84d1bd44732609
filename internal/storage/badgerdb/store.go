// Package badgerdb implements Folio's stores on BadgerHold.
package badgerdb

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dpetrov/folio/internal/common"
)

// Store wraps a BadgerHold database and provides the holding, analysis and
// system KV stores.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) a BadgerHold database at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Storage opened")
	return &Store{db: db, logger: logger}, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
