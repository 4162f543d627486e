package repository

import (
	"context"
	"time"

	"billbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillListFilter narrows List results. Zero values mean "no filter".
type BillListFilter struct {
	Status     model.BillStatus
	BillNumber string // partial match
	ContactID  *uuid.UUID
	Page       int
	Limit      int
}

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, filter BillListFilter) ([]model.Bill, int64, error)
	ListUnpaidDueBefore(ctx context.Context, before time.Time) ([]model.Bill, error)
	Update(ctx context.Context, bill *model.Bill) error
	ReplaceLines(ctx context.Context, billID uuid.UUID, lines []model.LineItem) error
	MaxNumberSuffix(ctx context.Context, prefix string) (int64, error)
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	return GetDB(ctx, r.db).Create(bill).Error
}

func (r *billRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := GetDB(ctx, r.db).First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := GetDB(ctx, r.db).Preload("LineItems").Preload("Contact").First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, filter BillListFilter) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Bill{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BillNumber != "" {
		query = query.Where("bill_number ILIKE ?", "%"+filter.BillNumber+"%")
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&bills).Error; err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}

func (r *billRepository) ListUnpaidDueBefore(ctx context.Context, before time.Time) ([]model.Bill, error) {
	var bills []model.Bill
	err := GetDB(ctx, r.db).
		Where("status NOT IN ?", []model.BillStatus{model.BillPaid, model.BillVoided}).
		Where("due_date <= ?", before).
		Order("due_date asc").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *billRepository) Update(ctx context.Context, bill *model.Bill) error {
	return GetDB(ctx, r.db).Save(bill).Error
}

// ReplaceLines swaps a draft bill's line items wholesale; edits never patch
// individual rows.
func (r *billRepository) ReplaceLines(ctx context.Context, billID uuid.UUID, lines []model.LineItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("bill_id = ?", billID).Delete(&model.LineItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].BillID = &billID
	}
	return db.Create(&lines).Error
}

// MaxNumberSuffix returns the highest numeric suffix among bill numbers with
// the given prefix, 0 when none exist.
func (r *billRepository) MaxNumberSuffix(ctx context.Context, prefix string) (int64, error) {
	var max int64
	err := GetDB(ctx, r.db).Model(&model.Bill{}).
		Where("bill_number LIKE ?", prefix+"%").
		Select("COALESCE(MAX(CAST(SUBSTRING(bill_number FROM ?) AS BIGINT)), 0)", len(prefix)+1).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}
