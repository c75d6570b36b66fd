package models

import "time"

// KVEntry is one durable key-value row. Carts and wishlists are stored as
// JSON documents under fixed per-customer keys.
type KVEntry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the goose-managed table name.
func (KVEntry) TableName() string {
	return "kv_entries"
}
