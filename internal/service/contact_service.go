package service

import (
	"context"
	"fmt"
	"time"

	"billbook/internal/model"
	"billbook/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// --- Interface ---

type ContactService interface {
	CreateContact(ctx context.Context, req ContactRequest, userID string) (ContactResponse, error)
	GetContact(ctx context.Context, id string) (ContactResponse, error)
	ListContacts(ctx context.Context, search string, page, limit int) ([]ContactResponse, int64, error)
	UpdateContact(ctx context.Context, id string, req ContactRequest, userID string) (ContactResponse, error)
	DeleteContact(ctx context.Context, id string, userID string) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewContactService(
	contactRepo repository.ContactRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *contactService) CreateContact(ctx context.Context, req ContactRequest, userID string) (ContactResponse, error) {
	contact := model.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.contactRepo.Create(txCtx, &contact); createErr != nil {
			return fmt.Errorf("failed to create contact: %w", createErr)
		}
		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionCreateContact, contact.ID.String(), contact.Name, req)
		return nil
	})
	if err != nil {
		return ContactResponse{}, err
	}

	return toContactResponse(contact), nil
}

func (s *contactService) GetContact(ctx context.Context, id string) (ContactResponse, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("invalid contact id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("contact not found: %w", err)
	}
	return toContactResponse(*contact), nil
}

func (s *contactService) ListContacts(ctx context.Context, search string, page, limit int) ([]ContactResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	contacts, total, err := s.contactRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	result := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		result = append(result, toContactResponse(c))
	}
	return result, total, nil
}

func (s *contactService) UpdateContact(ctx context.Context, id string, req ContactRequest, userID string) (ContactResponse, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("invalid contact id: %w", err)
	}

	var contact *model.Contact
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		contact, findErr = s.contactRepo.FindByID(txCtx, contactID)
		if findErr != nil {
			return fmt.Errorf("contact not found: %w", findErr)
		}

		contact.Name = req.Name
		contact.Email = req.Email
		contact.Phone = req.Phone
		contact.Address = req.Address

		if updateErr := s.contactRepo.Update(txCtx, contact); updateErr != nil {
			return fmt.Errorf("failed to update contact: %w", updateErr)
		}
		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionUpdateContact, contact.ID.String(), contact.Name, req)
		return nil
	})
	if err != nil {
		return ContactResponse{}, err
	}

	return toContactResponse(*contact), nil
}

func (s *contactService) DeleteContact(ctx context.Context, id string, userID string) error {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid contact id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		contact, findErr := s.contactRepo.FindByID(txCtx, contactID)
		if findErr != nil {
			return fmt.Errorf("contact not found: %w", findErr)
		}
		if deleteErr := s.contactRepo.Delete(txCtx, contactID); deleteErr != nil {
			return fmt.Errorf("failed to delete contact: %w", deleteErr)
		}
		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionDeleteContact, contact.ID.String(), contact.Name, nil)
		return nil
	})
}

// --- Mapping ---

func toContactResponse(c model.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
