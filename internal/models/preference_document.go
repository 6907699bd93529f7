package models

import "time"

// PreferenceDocument is one named, serialized preference record.
type PreferenceDocument struct {
	Key       string `gorm:"column:doc_key;primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
