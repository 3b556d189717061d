package dashboard

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"go.uber.org/zap"
)

// UncategorisedKey groups listings without a category.
const UncategorisedKey = "other"

type OwnerListings interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error)
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

type AdminStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalListings int64 `json:"total_listings"`
}

type Summary struct {
	Listings       []*domain.Listing `json:"listings"`
	TotalListings  int               `json:"total_listings"`
	TotalValue     float64           `json:"total_value"`
	CategoryCounts map[string]int    `json:"category_counts"`
	AdminStats     *AdminStats       `json:"admin_stats,omitempty"`
}

type Service struct {
	listings OwnerListings
	all      Counter
	users    UserCounter
	logger   *logger.Logger
}

func NewService(listings OwnerListings, all Counter, users UserCounter, log *logger.Logger) *Service {
	return &Service{listings: listings, all: all, users: users, logger: log.Named("dashboard")}
}

// Dashboard summarises the actor's listings. Site-wide figures are included only for admins.
func (s *Service) Dashboard(ctx context.Context, actor domain.Actor) (*Summary, error) {
	listings, err := s.listings.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	summary := Summarise(listings)
	if !actor.IsAdmin() {
		return summary, nil
	}

	users, err := s.users.CountUsers(ctx)
	if err != nil {
		s.logger.Error("Dashboard: failed to count users", zap.Error(err))
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	total, err := s.all.Count(ctx)
	if err != nil {
		s.logger.Error("Dashboard: failed to count listings", zap.Error(err))
		return nil, domain.PersistenceError("count listings", err)
	}
	summary.AdminStats = &AdminStats{TotalUsers: users, TotalListings: total}
	return summary, nil
}

func Summarise(listings []*domain.Listing) *Summary {
	s := &Summary{
		Listings:       listings,
		TotalListings:  len(listings),
		CategoryCounts: make(map[string]int),
	}
	if s.Listings == nil {
		s.Listings = []*domain.Listing{}
	}
	for _, l := range listings {
		s.TotalValue += l.Price
		key := string(l.Category)
		if key == "" {
			key = UncategorisedKey
		}
		s.CategoryCounts[key]++
	}
	return s
}
