package badgerdb

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

// SystemStore implements interfaces.SystemStore on BadgerHold.
type SystemStore struct {
	store *Store
}

// System returns the system KV store view.
func (s *Store) System() interfaces.SystemStore {
	return &SystemStore{store: s}
}

func (s *SystemStore) GetKV(_ context.Context, key string) (string, error) {
	var kv models.SystemKV
	if err := s.store.db.Get(key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", fmt.Errorf("system key '%s' not found", key)
		}
		return "", fmt.Errorf("failed to get system key '%s': %w", key, err)
	}
	return kv.Value, nil
}

func (s *SystemStore) SetKV(_ context.Context, key, value string) error {
	kv := models.SystemKV{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := s.store.db.Upsert(key, &kv); err != nil {
		return fmt.Errorf("failed to set system key '%s': %w", key, err)
	}
	return nil
}

var _ interfaces.SystemStore = (*SystemStore)(nil)
