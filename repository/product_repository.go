package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"checkout-service/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for catalog and stock access
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CheckAvailability(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	ConditionalDecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// CheckAvailability is a point-in-time read of the stock counter. It is
// advisory only; the binding check is the conditional decrement at
// order materialization time.
func (r *GormProductRepository) CheckAvailability(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return product.IsActive && product.Stock >= quantity, nil
}

// ConditionalDecrementStock decrements the stock counter only if enough
// stock remains, as a single round-trip to the database. Under two
// concurrent decrements contending for the last unit, exactly one row
// update applies and the counter never goes negative.
func (r *GormProductRepository) ConditionalDecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock reverses a previously applied decrement when a
// multi-item materialization fails partway through.
func (r *GormProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}
