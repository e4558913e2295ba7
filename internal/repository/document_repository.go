package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lifeflow/internal/model"
)

// ErrNotFound is returned when a document has never been written.
var ErrNotFound = errors.New("document not found")

// DocumentRepository stores whole JSON documents under string keys.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Where("name = ?", key).First(&doc).Error
	switch {
	case err == nil:
		return []byte(doc.Body), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
}

// Save replaces the document stored under key.
func (r *DocumentRepository) Save(ctx context.Context, key string, data []byte) error {
	doc := model.Document{Name: key, Body: string(data), UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}
	return nil
}
