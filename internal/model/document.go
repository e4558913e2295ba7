package model

import "time"

// Document is one named JSON document in the key-value store.
type Document struct {
	Name      string `gorm:"primaryKey"`
	Body      string
	UpdatedAt time.Time
}
