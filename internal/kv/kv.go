package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"officehours-backend/internal/model"
)

// Storage is a string key-value store addressed by fixed logical keys.
type Storage interface {
	// GetString returns the value for key. The boolean is false when the key
	// has never been written.
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
}

// gormStorage implements Storage on the kv_entries table.
type gormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a GORM-backed Storage.
func NewGormStorage(db *gorm.DB) Storage {
	return &gormStorage{db: db}
}

func (s *gormStorage) GetString(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where(&model.KVEntry{Key: key}).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *gormStorage) SetString(ctx context.Context, key, value string) error {
	entry := model.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// cachedStorage keeps recently read or written values in memory.
type cachedStorage struct {
	next  Storage
	cache *cache.Cache
}

// NewCachedStorage wraps next with a write-through cache.
func NewCachedStorage(next Storage, c *cache.Cache) Storage {
	return &cachedStorage{next: next, cache: c}
}

func (s *cachedStorage) GetString(ctx context.Context, key string) (string, bool, error) {
	if v, found := s.cache.Get(key); found {
		return v.(string), true, nil
	}
	value, ok, err := s.next.GetString(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	s.cache.SetDefault(key, value)
	return value, true, nil
}

func (s *cachedStorage) SetString(ctx context.Context, key, value string) error {
	if err := s.next.SetString(ctx, key, value); err != nil {
		// The backing value is now unknown.
		s.cache.Delete(key)
		return err
	}
	s.cache.SetDefault(key, value)
	return nil
}
