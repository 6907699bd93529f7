package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"boltdesk/internal/models"
)

// DocumentRepository stores serialized preference documents by key.
// Get reports found=false, with a nil error, for a key that was never written.
type DocumentRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("document key is required")
	}
	var doc models.PreferenceDocument
	if err := r.db.WithContext(ctx).Where("doc_key = ?", key).Take(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return doc.Value, true, nil
}

func (r *documentRepository) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("document key is required")
	}
	record := models.PreferenceDocument{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error
}

func (r *documentRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("document key is required")
	}
	return r.db.WithContext(ctx).Where("doc_key = ?", key).Delete(&models.PreferenceDocument{}).Error
}
