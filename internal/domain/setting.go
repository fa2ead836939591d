package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Setting is one entry in the key/value configuration store. Value is an
// opaque JSON document owned by the caller.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SettingRepository defines the interface for the settings store.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	// Upsert writes the value for the key, inserting if absent.
	Upsert(ctx context.Context, key string, value json.RawMessage) (*Setting, error)
}
