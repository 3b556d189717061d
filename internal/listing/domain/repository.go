package domain

import "context"

// ListingRepository is the persistent collection of listings.
// FindByID and Update return ErrListingNotFound when the id is unknown.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, error)
	Count(ctx context.Context) (int64, error)
}
