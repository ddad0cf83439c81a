package inventory

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/internal/repo"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
)

// SnapshotItem is a read-time view of one component's stock position.
type SnapshotItem struct {
	Component  models.Component `json:"component"`
	LowStock   bool             `json:"lowStock"`
	OutOfStock bool             `json:"outOfStock"`
}

// Snapshot aggregates the current stock picture for the admin dashboard.
// It is computed at read time and never stored.
type Snapshot struct {
	Items           []SnapshotItem `json:"items"`
	LowStockCount   int            `json:"lowStockCount"`
	OutOfStockCount int            `json:"outOfStockCount"`
}

// Service exposes inventory read operations.
type Service interface {
	Snapshot(ctx context.Context, kind *enums.ComponentKind) (*Snapshot, error)
}

type serviceImpl struct {
	repo Repository
}

// NewService wires the inventory snapshot service.
func NewService(repository Repository) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &serviceImpl{repo: repository}, nil
}

func (s *serviceImpl) Snapshot(ctx context.Context, kind *enums.ComponentKind) (*Snapshot, error) {
	if kind != nil && !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid component kind").
			WithDetails(map[string]any{"kind": string(*kind)})
	}

	components, err := s.repo.ListActive(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing components for snapshot")
	}

	snap := &Snapshot{Items: make([]SnapshotItem, 0, len(components))}
	for _, component := range components {
		item := SnapshotItem{
			Component:  component,
			OutOfStock: component.Quantity == 0,
			LowStock:   component.Quantity > 0 && component.Quantity <= LowStockThreshold,
		}
		if item.OutOfStock {
			snap.OutOfStockCount++
		}
		if item.LowStock {
			snap.LowStockCount++
		}
		snap.Items = append(snap.Items, item)
	}
	return snap, nil
}

// Repository defines the persistence surface the snapshot service needs.
type Repository interface {
	ListActive(ctx context.Context, kind *enums.ComponentKind) ([]models.Component, error)
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository constructs the inventory read repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &repositoryImpl{Base: repo.NewBase(db)}, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context, kind *enums.ComponentKind) ([]models.Component, error) {
	query := r.DB(ctx).
		Model(&models.Component{}).
		Where("is_active = ?", true).
		Order("kind ASC, name ASC")
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	var components []models.Component
	if err := query.Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}
