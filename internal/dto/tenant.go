package dto

import (
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// CreateTenantRequest defines the data for creating a tenant.
type CreateTenantRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"required,min=1,max=60,slug"`
	Description string `json:"description" binding:"max=500"`
}

// AddMemberRequest defines the data for adding a user to a tenant.
type AddMemberRequest struct {
	UserID string `json:"userID" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=ADMIN RESIDENT"`
}

// TenantResponse defines the data returned for a tenant.
type TenantResponse struct {
	TenantID    string    `json:"tenantID"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MemberResponse defines the data returned for a tenant membership.
type MemberResponse struct {
	UserID   string    `json:"userID"`
	UserName string    `json:"userName"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ToTenantResponse converts a domain.Tenant to TenantResponse DTO.
func ToTenantResponse(t *domain.Tenant) TenantResponse {
	return TenantResponse{
		TenantID:    t.TenantID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTenantResponses converts a slice of domain.Tenant to TenantResponse DTOs.
func ToTenantResponses(tenants []domain.Tenant) []TenantResponse {
	responses := make([]TenantResponse, len(tenants))
	for i, tenant := range tenants {
		responses[i] = ToTenantResponse(&tenant)
	}
	return responses
}

// ToMemberResponse converts a domain.TenantMembership to MemberResponse DTO.
func ToMemberResponse(m *domain.TenantMembership) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID,
		UserName: m.UserName,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
