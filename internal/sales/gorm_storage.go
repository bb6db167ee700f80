package sales

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage persists sales in a relational table through gorm.
// The *gorm.DB is a shared connection pool; each call opens its own session
// bound to ctx and mutations run in their own transaction.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a storage on top of an opened database handle.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func (g *GormStorage) Create(ctx context.Context, sale *Sale) error {
	if sale.ID != 0 {
		return ErrIDAssigned
	}
	if err := g.db.WithContext(ctx).Create(sale).Error; err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (g *GormStorage) Read(ctx context.Context, id int64) (*Sale, error) {
	return first(g.db.WithContext(ctx), id)
}

func (g *GormStorage) Find(ctx context.Context, filter Filter) ([]*Sale, error) {
	query := g.db.WithContext(ctx).Model(&Sale{})

	if filter.ProductID != nil {
		query = query.Where(clause.Eq{Column: "product_id", Value: *filter.ProductID})
	}
	if filter.StartDate != nil {
		query = query.Where(clause.Gte{Column: "date", Value: *filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(clause.Lte{Column: "date", Value: *filter.EndDate})
	}

	result := make([]*Sale, 0)
	if err := query.Order("id").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	return result, nil
}

func (g *GormStorage) Update(ctx context.Context, id int64, apply func(*Sale) error) (*Sale, error) {
	var updated *Sale
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := first(tx, id)
		if err != nil {
			return err
		}
		if err := apply(sale); err != nil {
			return err
		}
		sale.ID = id
		if err := tx.Save(sale).Error; err != nil {
			return fmt.Errorf("save sale %d: %w", id, err)
		}
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (g *GormStorage) Delete(ctx context.Context, id int64) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Sale{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete sale %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func first(db *gorm.DB, id int64) (*Sale, error) {
	var sale Sale
	if err := db.Where("id = ?", id).Take(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load sale %d: %w", id, err)
	}
	return &sale, nil
}
