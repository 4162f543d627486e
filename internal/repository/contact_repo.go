package repository

import (
	"context"

	"billbook/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return GetDB(ctx, r.db).Create(contact).Error
}

func (r *contactRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	var contact model.Contact
	if err := GetDB(ctx, r.db).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Contact{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.Contact) error {
	return GetDB(ctx, r.db).Save(contact).Error
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Contact{}, "id = ?", id).Error
}
