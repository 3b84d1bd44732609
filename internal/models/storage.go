package models

import "time"

// SystemKV is a single system configuration/state entry.
type SystemKV struct {
	Key       string    `json:"key" badgerhold:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// System KV keys
const (
	KVLastSync = "last_sync"
)
