package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"officehours-backend/internal/kv"
)

// EnablementKey is the storage key of the Enablement blob.
const EnablementKey = "@notifications_enabled_areas"

// Enablement maps office id to whether reminders are wanted for it.
type Enablement map[string]bool

// IsEnabled reports whether officeID is opted in. Offices without an entry are enabled.
func IsEnabled(officeID string, m Enablement) bool {
	enabled, ok := m[officeID]
	return !ok || enabled
}

// EnablementStore persists Enablement in a kv.Storage.
type EnablementStore struct {
	kv  kv.Storage
	log *zap.Logger
}

// NewEnablementStore creates a store on top of s.
func NewEnablementStore(s kv.Storage, log *zap.Logger) *EnablementStore {
	return &EnablementStore{kv: s, log: log.Named("enablement")}
}

// Load reads the stored enablement map, or an empty map if there is none or it cannot be read.
func (s *EnablementStore) Load(ctx context.Context) Enablement {
	raw, ok, err := s.kv.GetString(ctx, EnablementKey)
	if err != nil {
		s.log.Error("failed to read office status, using defaults", zap.Error(err))
		return Enablement{}
	}
	if !ok {
		return Enablement{}
	}

	m := Enablement{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		s.log.Error("failed to decode office status, using defaults", zap.Error(err))
		return Enablement{}
	}
	return m
}

// Save persists m, logging and swallowing any failure.
func (s *EnablementStore) Save(ctx context.Context, m Enablement) {
	data, err := json.Marshal(m)
	if err != nil {
		s.log.Error("failed to encode office status", zap.Error(err))
		return
	}
	if err := s.kv.SetString(ctx, EnablementKey, string(data)); err != nil {
		s.log.Error("failed to save office status", zap.Error(err))
	}
}

// Toggle stores enabled for officeID and returns the new map. m is not modified.
func (s *EnablementStore) Toggle(ctx context.Context, officeID string, enabled bool, m Enablement) Enablement {
	next := make(Enablement, len(m)+1)
	for id, v := range m {
		next[id] = v
	}
	next[officeID] = enabled
	s.Save(ctx, next)
	s.log.Info("office status changed", zap.String("office", officeID), zap.Bool("enabled", enabled))
	return next
}
