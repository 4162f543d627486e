package repository

import (
	"context"

	"billbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRepository is append-only: there is deliberately no update or delete.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByBill(ctx context.Context, billID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, page, limit int) ([]model.Payment, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).Where("bill_id = ?", billID).Order("date asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, page, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}
