package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billbook/internal/model"
	"billbook/internal/repository"
)

type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     *string         `json:"user_id"`
	Username   string          `json:"username,omitempty"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type AuditService interface {
	ListAuditLogs(ctx context.Context, entityID string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) ListAuditLogs(ctx context.Context, entityID string, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.auditRepo.List(ctx, entityID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		result = append(result, toAuditLogResponse(entry))
	}
	return result, total, nil
}

func toAuditLogResponse(entry model.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         entry.ID.String(),
		Action:     entry.Action,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.UserID != nil {
		s := entry.UserID.String()
		resp.UserID = &s
	}
	if entry.User != nil {
		resp.Username = entry.User.Username
	}
	if entry.Details != "" && json.Valid([]byte(entry.Details)) {
		resp.Details = json.RawMessage(entry.Details)
	}
	return resp
}
