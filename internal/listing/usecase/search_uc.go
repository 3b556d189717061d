package usecase

import (
	"context"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"go.uber.org/zap"
)

// OwnerSearchFilter restricts to ownerID and, when text is non-blank, to
// listings whose title, description or category contains it (case-insensitive).
func OwnerSearchFilter(ownerID, text string) domain.Filter {
	return domain.Filter{OwnerID: ownerID, Text: strings.TrimSpace(text)}
}

// CategoryFilter matches one category exactly across all owners. ok is false
// for values outside the supported set.
func CategoryFilter(raw string) (filter domain.Filter, ok bool) {
	c, ok := domain.ParseCategory(raw)
	if !ok {
		return domain.Filter{}, false
	}
	return domain.Filter{Category: c}, true
}

func (uc *ListingUsecase) SearchOwnerListings(ctx context.Context, ownerID, text string) ([]*domain.Listing, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("owner_id", "is required")
	}
	filter := OwnerSearchFilter(ownerID, text)
	uc.logger.Debug("ListingUsecase.SearchOwnerListings: searching", zap.String("owner_id", ownerID), zap.String("text", filter.Text))
	return uc.find(ctx, "search owner listings", filter)
}

// FilterByCategory returns an empty result, not an error, for unknown categories.
func (uc *ListingUsecase) FilterByCategory(ctx context.Context, category string) ([]*domain.Listing, error) {
	filter, ok := CategoryFilter(category)
	if !ok {
		uc.logger.Debug("ListingUsecase.FilterByCategory: unsupported category", zap.String("category", category))
		return []*domain.Listing{}, nil
	}
	return uc.find(ctx, "filter by category", filter)
}
