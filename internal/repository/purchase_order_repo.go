package repository

import (
	"context"

	"billbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderListFilter struct {
	Status    model.PurchaseOrderStatus
	ContactID *uuid.UUID
	Page      int
	Limit     int
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error)
	Update(ctx context.Context, po *model.PurchaseOrder) error
	ReplaceLines(ctx context.Context, poID uuid.UUID, lines []model.LineItem) error
	MaxNumberSuffix(ctx context.Context, prefix string) (int64, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(po).Error
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).Preload("LineItems").Preload("Contact").First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error) {
	var pos []model.PurchaseOrder
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	return pos, total, nil
}

func (r *purchaseOrderRepository) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Save(po).Error
}

func (r *purchaseOrderRepository) ReplaceLines(ctx context.Context, poID uuid.UUID, lines []model.LineItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_order_id = ?", poID).Delete(&model.LineItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].PurchaseOrderID = &poID
	}
	return db.Create(&lines).Error
}

func (r *purchaseOrderRepository) MaxNumberSuffix(ctx context.Context, prefix string) (int64, error) {
	var max int64
	err := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).
		Where("po_number LIKE ?", prefix+"%").
		Select("COALESCE(MAX(CAST(SUBSTRING(po_number FROM ?) AS BIGINT)), 0)", len(prefix)+1).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}
