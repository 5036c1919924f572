package repository

import (
	"context"

	"lendaround/internal/domain"

	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var l domain.Listing
	tx := r.db.WithContext(ctx).First(&l, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &l, nil
}

type ListingFilters struct {
	MinPrice float64
	MaxPrice float64
	Limit    int
	Offset   int
}

// ListActive returns browsable listings, optionally excluding ids booked
// for the queried range.
func (r *ListingRepository) ListActive(ctx context.Context, f ListingFilters, excludeIDs []int64) ([]domain.Listing, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Where("status IN ?", []string{string(domain.ListingActive), string(domain.ListingApproved)})

	if f.MinPrice > 0 {
		q = q.Where("price_per_day >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_per_day <= ?", f.MaxPrice)
	}
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []domain.Listing
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
