package repository

import (
	"context"
	"time"

	"billbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecurringBillRepository interface {
	Create(ctx context.Context, template *model.RecurringBill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecurringBill, error)
	List(ctx context.Context, status model.RecurringBillStatus, page, limit int) ([]model.RecurringBill, int64, error)
	ListActiveDue(ctx context.Context, asOf time.Time) ([]model.RecurringBill, error)
	Update(ctx context.Context, template *model.RecurringBill) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type recurringBillRepository struct {
	db *gorm.DB
}

func NewRecurringBillRepository(db *gorm.DB) RecurringBillRepository {
	return &recurringBillRepository{db: db}
}

func (r *recurringBillRepository) Create(ctx context.Context, template *model.RecurringBill) error {
	return GetDB(ctx, r.db).Create(template).Error
}

func (r *recurringBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RecurringBill, error) {
	var template model.RecurringBill
	if err := GetDB(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *recurringBillRepository) List(ctx context.Context, status model.RecurringBillStatus, page, limit int) ([]model.RecurringBill, int64, error) {
	var templates []model.RecurringBill
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RecurringBill{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("next_date asc").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// ListActiveDue returns active templates whose next date falls on or before asOf.
func (r *recurringBillRepository) ListActiveDue(ctx context.Context, asOf time.Time) ([]model.RecurringBill, error) {
	var templates []model.RecurringBill
	err := GetDB(ctx, r.db).
		Where("status = ?", model.RecurringActive).
		Where("next_date <= ?", asOf).
		Order("next_date asc").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *recurringBillRepository) Update(ctx context.Context, template *model.RecurringBill) error {
	return GetDB(ctx, r.db).Save(template).Error
}

func (r *recurringBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.RecurringBill{}, "id = ?", id).Error
}
