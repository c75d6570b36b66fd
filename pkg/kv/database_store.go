package kv

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shoplane/storefront-backend/pkg/db/models"
)

// DatabaseStore persists values in the kv_entries table via GORM.
type DatabaseStore struct {
	conn *gorm.DB
}

// NewDatabaseStore wraps the provided GORM connection.
func NewDatabaseStore(conn *gorm.DB) (*DatabaseStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("gorm connection is required")
	}
	return &DatabaseStore{conn: conn}, nil
}

func (s *DatabaseStore) Get(ctx context.Context, key string) (string, error) {
	var entry models.KVEntry
	err := s.conn.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("db get %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *DatabaseStore) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("db set %s: %w", key, err)
	}
	return nil
}

func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	err := s.conn.WithContext(ctx).Delete(&models.KVEntry{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("db delete %s: %w", key, err)
	}
	return nil
}
