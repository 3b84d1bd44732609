// Package storage coordinates Folio's persistent stores.
package storage

import (
	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/storage/badgerdb"
)

// Manager owns the BadgerHold database and hands out typed store views.
type Manager struct {
	store  *badgerdb.Store
	logger *common.Logger
}

// NewManager opens the database at the configured path.
func NewManager(config *common.Config, logger *common.Logger) (*Manager, error) {
	store, err := badgerdb.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, logger: logger}, nil
}

// Holdings returns the holding store.
func (m *Manager) Holdings() interfaces.HoldingStore {
	return m.store.Holdings()
}

// Analyses returns the analysis store.
func (m *Manager) Analyses() interfaces.AnalysisStore {
	return m.store.Analyses()
}

// System returns the system KV store.
func (m *Manager) System() interfaces.SystemStore {
	return m.store.System()
}

// Close shuts down the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)
