package dto

import (
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateListingRequest defines the data for creating a listing (in draft).
type CreateListingRequest struct {
	CategoryID        string           `json:"categoryID" binding:"required,uuid"`
	Title             string           `json:"title" binding:"required,min=1,max=150"`
	Description       string           `json:"description" binding:"required,max=5000"`
	PricingType       string           `json:"pricingType" binding:"required,oneof=free fixed_price pay_what_you_want"`
	Price             *decimal.Decimal `json:"price" binding:"required_unless=PricingType free"`
	Condition         *string          `json:"condition" binding:"omitempty,oneof=new slightly_used used slightly_damaged maintenance"`
	AvailableQuantity int              `json:"availableQuantity" binding:"required,min=1"`
	VisibilityScope   string           `json:"visibilityScope" binding:"omitempty,oneof=community neighborhood"`
}

// UpdateListingRequest defines the data allowed when updating a listing.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateListingRequest struct {
	Title             *string          `json:"title" binding:"omitempty,min=1,max=150"`
	Description       *string          `json:"description" binding:"omitempty,max=5000"`
	PricingType       *string          `json:"pricingType" binding:"omitempty,oneof=free fixed_price pay_what_you_want"`
	Price             *decimal.Decimal `json:"price"`
	Condition         *string          `json:"condition" binding:"omitempty,oneof=new slightly_used used slightly_damaged maintenance"`
	AvailableQuantity *int             `json:"availableQuantity" binding:"omitempty,min=0"`
	VisibilityScope   *string          `json:"visibilityScope" binding:"omitempty,oneof=community neighborhood"`
}

// CancelListingRequest carries the reason for cancelling a listing.
type CancelListingRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// FlagListingRequest carries a resident's report against a listing.
type FlagListingRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListListingsParams defines query parameters for listing listings.
type ListListingsParams struct {
	CategoryID *string `form:"categoryID" binding:"omitempty,uuid"`
	Status     *string `form:"status" binding:"omitempty,oneof=draft published paused cancelled"`
	Archived   bool    `form:"archived,default=false"`
	Limit      int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken  *string `form:"nextToken"`
}

// ListingResponse defines the data returned for a listing.
type ListingResponse struct {
	ListingID         string           `json:"listingID"`
	CategoryID        string           `json:"categoryID"`
	LenderID          string           `json:"lenderID"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Status            string           `json:"status"`
	IsAvailable       bool             `json:"isAvailable"`
	PricingType       string           `json:"pricingType"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Condition         *string          `json:"condition,omitempty"`
	AvailableQuantity int              `json:"availableQuantity"`
	VisibilityScope   string           `json:"visibilityScope"`
	IsFlagged         bool             `json:"isFlagged"`
	IsArchived        bool             `json:"isArchived"`
	PublishedAt       *time.Time       `json:"publishedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// ListListingsResponse wraps a page of listings.
type ListListingsResponse struct {
	Listings  []ListingResponse `json:"listings"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListingResponse converts a domain.Listing to ListingResponse DTO.
func ToListingResponse(l *domain.Listing) ListingResponse {
	var condition *string
	if l.Condition != nil {
		c := string(*l.Condition)
		condition = &c
	}
	return ListingResponse{
		ListingID:         l.ListingID,
		CategoryID:        l.CategoryID,
		LenderID:          l.LenderID(),
		Title:             l.Title,
		Description:       l.Description,
		Status:            string(l.Status),
		IsAvailable:       l.IsAvailable,
		PricingType:       string(l.PricingType),
		Price:             l.Price,
		Condition:         condition,
		AvailableQuantity: l.AvailableQuantity,
		VisibilityScope:   string(l.VisibilityScope),
		IsFlagged:         l.IsFlagged,
		IsArchived:        l.IsArchived(),
		PublishedAt:       l.PublishedAt,
		CreatedAt:         l.CreatedAt,
	}
}

// ToListListingsResponse converts a page of domain listings to the response DTO.
func ToListListingsResponse(listings []domain.Listing, nextToken *string) ListListingsResponse {
	responses := make([]ListingResponse, len(listings))
	for i, listing := range listings {
		responses[i] = ToListingResponse(&listing)
	}
	return ListListingsResponse{Listings: responses, NextToken: nextToken}
}
