package dto

import "github.com/ecovilla/exchange_backend/internal/core/domain"

// CreateCategoryRequest defines the data for creating an exchange category.
type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Description  string `json:"description" binding:"max=500"`
	ReturnPolicy string `json:"returnPolicy" binding:"required,oneof=RETURN_REQUIRED REUSABLE CONSUMABLE"`
}

// CategoryResponse defines the data returned for an exchange category.
type CategoryResponse struct {
	CategoryID     string `json:"categoryID"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ReturnPolicy   string `json:"returnPolicy"`
	RequiresReturn bool   `json:"requiresReturn"`
}

// ToCategoryResponse converts a domain.Category to CategoryResponse DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:     c.CategoryID,
		Name:           c.Name,
		Description:    c.Description,
		ReturnPolicy:   string(c.ReturnPolicy),
		RequiresReturn: c.ReturnPolicy.RequiresReturn(),
	}
}

// ToCategoryResponses converts a slice of domain.Category to CategoryResponse DTOs.
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = ToCategoryResponse(&category)
	}
	return responses
}
