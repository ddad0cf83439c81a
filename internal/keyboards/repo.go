package keyboards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// Repository is the persistence surface for prebuilt keyboards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, keyboard *models.Keyboard) (*models.Keyboard, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Keyboard, error)
	FindByComponent(ctx context.Context, componentID uuid.UUID) ([]models.Keyboard, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SetCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error
	List(ctx context.Context, input ListKeyboardsInput, limit int, cursor *pagination.Cursor) ([]models.Keyboard, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a keyboards repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, keyboard *models.Keyboard) (*models.Keyboard, error) {
	if err := r.db.WithContext(ctx).Create(keyboard).Error; err != nil {
		return nil, err
	}
	return keyboard, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Keyboard, error) {
	var keyboard models.Keyboard
	err := r.db.WithContext(ctx).
		Preload("BaseColor").
		Preload("Keycap").
		Preload("Switch").
		Where("id = ?", id).
		First(&keyboard).Error
	if err != nil {
		return nil, err
	}
	return &keyboard, nil
}

func (r *repository) FindByComponent(ctx context.Context, componentID uuid.UUID) ([]models.Keyboard, error) {
	var keyboards []models.Keyboard
	err := r.db.WithContext(ctx).
		Where("base_color_id = ? OR keycap_id = ? OR switch_id = ?", componentID, componentID, componentID).
		Order("created_at ASC").
		Find(&keyboards).Error
	if err != nil {
		return nil, err
	}
	return keyboards, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Keyboard{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SetCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Keyboard{}).
		Where("id = ?", id).
		UpdateColumn("cost", cost).Error
}

func (r *repository) List(ctx context.Context, input ListKeyboardsInput, limit int, cursor *pagination.Cursor) ([]models.Keyboard, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Keyboard{}).
		Preload("BaseColor").
		Preload("Keycap").
		Preload("Switch").
		Order("created_at DESC, id DESC").
		Limit(limit)

	if !input.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var keyboards []models.Keyboard
	if err := query.Find(&keyboards).Error; err != nil {
		return nil, err
	}
	return keyboards, nil
}
