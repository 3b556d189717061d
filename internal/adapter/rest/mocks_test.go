package rest

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/dashboard"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	userdomain "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/usecase"
	"github.com/stretchr/testify/mock"
)

type MockListingService struct{ mock.Mock }

func (m *MockListingService) CreateListing(ctx context.Context, actor domain.Actor, fields domain.Fields, upload *domain.Upload) (*domain.Listing, error) {
	args := m.Called(ctx, actor, fields, upload)
	return listingOrNil(args.Get(0)), args.Error(1)
}
func (m *MockListingService) UpdateListing(ctx context.Context, actor domain.Actor, id string, fields domain.Fields, upload *domain.Upload) (*domain.Listing, error) {
	args := m.Called(ctx, actor, id, fields, upload)
	return listingOrNil(args.Get(0)), args.Error(1)
}
func (m *MockListingService) DeleteListing(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}
func (m *MockListingService) GetListingByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	return listingOrNil(args.Get(0)), args.Error(1)
}
func (m *MockListingService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	args := m.Called(ctx, ownerID)
	return listingsOrNil(args.Get(0)), args.Error(1)
}
func (m *MockListingService) SearchOwnerListings(ctx context.Context, ownerID, text string) ([]*domain.Listing, error) {
	args := m.Called(ctx, ownerID, text)
	return listingsOrNil(args.Get(0)), args.Error(1)
}
func (m *MockListingService) FilterByCategory(ctx context.Context, category string) ([]*domain.Listing, error) {
	args := m.Called(ctx, category)
	return listingsOrNil(args.Get(0)), args.Error(1)
}

func listingOrNil(v any) *domain.Listing {
	if v == nil {
		return nil
	}
	return v.(*domain.Listing)
}

func listingsOrNil(v any) []*domain.Listing {
	if v == nil {
		return nil
	}
	return v.([]*domain.Listing)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetProfile(ctx context.Context, actor domain.Actor) (*userdomain.User, error) {
	args := m.Called(ctx, actor)
	return userOrNil(args.Get(0)), args.Error(1)
}
func (m *MockUserService) Register(ctx context.Context, in usecase.RegisterInput) (*userdomain.User, error) {
	args := m.Called(ctx, in)
	return userOrNil(args.Get(0)), args.Error(1)
}
func (m *MockUserService) Login(ctx context.Context, username, password string) (string, *userdomain.User, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), userOrNil(args.Get(1)), args.Error(2)
}
func (m *MockUserService) UpdateProfile(ctx context.Context, actor domain.Actor, email, contactNo string) (*userdomain.User, error) {
	args := m.Called(ctx, actor, email, contactNo)
	return userOrNil(args.Get(0)), args.Error(1)
}
func (m *MockUserService) ChangePassword(ctx context.Context, actor domain.Actor, current, next, confirm string) error {
	return m.Called(ctx, actor, current, next, confirm).Error(0)
}
func (m *MockUserService) ChangeProfilePhoto(ctx context.Context, actor domain.Actor, upload domain.Upload) (*userdomain.User, error) {
	args := m.Called(ctx, actor, upload)
	return userOrNil(args.Get(0)), args.Error(1)
}

func userOrNil(v any) *userdomain.User {
	if v == nil {
		return nil
	}
	return v.(*userdomain.User)
}

type MockDashboard struct{ mock.Mock }

func (m *MockDashboard) Dashboard(ctx context.Context, actor domain.Actor) (*dashboard.Summary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Summary), args.Error(1)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	return m.Called(toEmail, listingTitle).Error(0)
}
