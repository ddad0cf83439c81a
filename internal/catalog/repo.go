package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// Repository is the persistence surface for catalog components.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, component *models.Component) (*models.Component, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	List(ctx context.Context, input ListComponentsInput, limit int, cursor *pagination.Cursor) ([]models.Component, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, component *models.Component) (*models.Component, error) {
	if err := r.db.WithContext(ctx).Create(component).Error; err != nil {
		return nil, err
	}
	return component, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	var component models.Component
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		UpdateColumn("quantity", quantity)
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, input ListComponentsInput, limit int, cursor *pagination.Cursor) ([]models.Component, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if input.Kind != nil {
		query = query.Where("kind = ?", *input.Kind)
	}
	if !input.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var components []models.Component
	if err := query.Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}
