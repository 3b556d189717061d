package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/metrics"
	"go.uber.org/zap"
)

const listingAssetFolder = "classifieds/ads"

var listingUploadConstraints = domain.UploadConstraints{
	Folder:         listingAssetFolder,
	AllowedFormats: domain.AllowedImageFormats,
}

// ListingCache is a read-through cache for single listings. GetListing returns (nil, nil) on a miss.
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishListingCreated(ctx context.Context, listing *domain.Listing) error
	PublishListingUpdated(ctx context.Context, listing *domain.Listing) error
	PublishListingDeleted(ctx context.Context, listingID string) error
}

// ListingUsecase keeps a listing record and its remote image consistent
// across create, update and delete. cache, publisher and metrics are optional.
type ListingUsecase struct {
	repo      domain.ListingRepository
	assets    domain.AssetStore
	cache     ListingCache
	publisher EventPublisher
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
	now       func() time.Time
}

func NewListingUsecase(
	repo domain.ListingRepository,
	assets domain.AssetStore,
	cache ListingCache,
	publisher EventPublisher,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		assets:    assets,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    log.Named("listing_usecase"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateListing stores the optional image first and only then writes the record owned by actor.
func (uc *ListingUsecase) CreateListing(ctx context.Context, actor domain.Actor, fields domain.Fields, upload *domain.Upload) (*domain.Listing, error) {
	if actor.ID == "" {
		return nil, domain.ErrForbidden
	}
	uc.logger.Info("ListingUsecase.CreateListing: creating new listing",
		zap.String("owner_id", actor.ID), zap.Bool("with_image", upload != nil))

	if err := fields.RequireCreateFields(); err != nil {
		return nil, err
	}
	listing := &domain.Listing{OwnerID: actor.ID}
	if err := listing.Apply(fields); err != nil {
		uc.logger.Debug("ListingUsecase.CreateListing: validation failed", zap.Error(err))
		return nil, err
	}

	if upload != nil {
		img, err := uc.uploadImage(ctx, *upload)
		if err != nil {
			uc.logger.Error("ListingUsecase.CreateListing: image upload failed", zap.String("owner_id", actor.ID), zap.Error(err))
			return nil, err
		}
		listing.Image = img
	}

	now := uc.now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("ListingUsecase.CreateListing: failed to create listing", zap.String("owner_id", actor.ID), zap.Error(err))
		if listing.Image != nil {
			uc.reportOrphan(metrics.OrphanPersistFailed, "", listing.Image.Handle, err)
		}
		return nil, domain.PersistenceError("create listing", err)
	}

	uc.metrics.ListingCreated()
	uc.cacheListing(ctx, listing)
	if uc.publisher != nil {
		if err := uc.publisher.PublishListingCreated(ctx, listing); err != nil {
			uc.logger.Warn("ListingUsecase.CreateListing: failed to publish event", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}
	return listing, nil
}

// UpdateListing applies fields and an optional new image. The new image is
// uploaded before the previous one is deleted; a failed upload changes nothing.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, actor domain.Actor, id string, fields domain.Fields, upload *domain.Upload) (*domain.Listing, error) {
	uc.logger.Info("ListingUsecase.UpdateListing: updating listing",
		zap.String("listing_id", id), zap.String("actor_id", actor.ID), zap.Bool("with_image", upload != nil))

	current, err := uc.loadForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := updated.Apply(fields); err != nil {
		uc.logger.Debug("ListingUsecase.UpdateListing: validation failed", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}

	if upload != nil {
		img, err := uc.uploadImage(ctx, *upload)
		if err != nil {
			uc.logger.Error("ListingUsecase.UpdateListing: image upload failed, update aborted", zap.String("listing_id", id), zap.Error(err))
			return nil, err
		}
		if previous := current.Image; previous.HasHandle() {
			if err := uc.assets.Delete(ctx, previous.Handle); err != nil {
				uc.reportOrphan(metrics.OrphanReplaceCleanup, id, previous.Handle, err)
			}
		}
		updated.Image = img
	}
	updated.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, &updated); err != nil {
		uc.logger.Error("ListingUsecase.UpdateListing: failed to update listing in repo", zap.String("listing_id", id), zap.Error(err))
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		if upload != nil {
			uc.reportOrphan(metrics.OrphanPersistFailed, id, updated.Image.Handle, err)
		}
		return nil, domain.PersistenceError("update listing", err)
	}

	uc.metrics.ListingUpdated()
	uc.cacheListing(ctx, &updated)
	if uc.publisher != nil {
		if err := uc.publisher.PublishListingUpdated(ctx, &updated); err != nil {
			uc.logger.Warn("ListingUsecase.UpdateListing: failed to publish event", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return &updated, nil
}

// DeleteListing removes the remote image and then the record. A failed image
// delete is logged and counted but never stops the record removal.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, actor domain.Actor, id string) error {
	uc.logger.Info("ListingUsecase.DeleteListing: deleting listing", zap.String("listing_id", id), zap.String("actor_id", actor.ID))

	listing, err := uc.loadForMutation(ctx, actor, id)
	if err != nil {
		return err
	}

	if listing.Image.HasHandle() {
		if err := uc.assets.Delete(ctx, listing.Image.Handle); err != nil {
			uc.reportOrphan(metrics.OrphanDeleteCleanup, id, listing.Image.Handle, err)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("ListingUsecase.DeleteListing: failed to delete listing in repo", zap.String("listing_id", id), zap.Error(err))
		if errors.Is(err, domain.ErrListingNotFound) {
			return domain.ErrListingNotFound
		}
		return domain.PersistenceError("delete listing", err)
	}

	uc.metrics.ListingDeleted()
	if uc.cache != nil {
		if err := uc.cache.DeleteListing(ctx, id); err != nil {
			uc.logger.Warn("ListingUsecase.DeleteListing: failed to evict cache", zap.String("listing_id", id), zap.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishListingDeleted(ctx, id); err != nil {
			uc.logger.Warn("ListingUsecase.DeleteListing: failed to publish event", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return nil
}

func (uc *ListingUsecase) GetListingByID(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, domain.ErrListingNotFound
	}

	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("ListingUsecase.GetListingByID: cache read failed", zap.String("listing_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		uc.logger.Error("ListingUsecase.GetListingByID: failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, domain.PersistenceError("get listing", err)
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}

	uc.cacheListing(ctx, listing)
	return listing, nil
}

// ListByOwner returns the owner's listings, most recently created first.
func (uc *ListingUsecase) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("owner_id", "is required")
	}
	return uc.find(ctx, "list owner listings", domain.Filter{OwnerID: ownerID, NewestFirst: true})
}

// loadForMutation fetches the listing and short-circuits with ErrForbidden
// before any store is touched when actor is not the owner.
func (uc *ListingUsecase) loadForMutation(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, domain.ErrListingNotFound
	}
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Warn("ListingUsecase: listing not found", zap.String("listing_id", id))
			return nil, domain.ErrListingNotFound
		}
		uc.logger.Error("ListingUsecase: failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, domain.PersistenceError("find listing", err)
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}

	if domain.Authorize(actor, listing) != domain.Allow {
		uc.logger.Warn("ListingUsecase: forbidden to mutate listing",
			zap.String("listing_id", id), zap.String("listing_owner_id", listing.OwnerID), zap.String("actor_id", actor.ID))
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

func (uc *ListingUsecase) uploadImage(ctx context.Context, upload domain.Upload) (*domain.Image, error) {
	stored, err := uc.assets.Upload(ctx, upload, listingUploadConstraints)
	if err != nil {
		return nil, domain.StorageError("upload listing image", err)
	}
	img := domain.NewImage(stored.URL, stored.Handle)
	if img == nil {
		return nil, domain.StorageError("upload listing image", errors.New("asset store returned an incomplete image reference"))
	}
	return img, nil
}

func (uc *ListingUsecase) find(ctx context.Context, op string, filter domain.Filter) ([]*domain.Listing, error) {
	listings, err := uc.repo.FindByFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("ListingUsecase: "+op+" failed", zap.Any("filter", filter), zap.Error(err))
		return nil, domain.PersistenceError(op, err)
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}
	return listings, nil
}

func (uc *ListingUsecase) cacheListing(ctx context.Context, listing *domain.Listing) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetListing(ctx, listing); err != nil {
		uc.logger.Warn("ListingUsecase: failed to cache listing", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

// reportOrphan records a remote asset that no record references any more.
// There is no automatic reconciliation; the log line is the audit trail.
func (uc *ListingUsecase) reportOrphan(reason, listingID, handle string, cause error) {
	uc.metrics.AssetOrphaned(reason)
	uc.logger.Warn("ListingUsecase: remote asset left orphaned",
		zap.String("reason", reason),
		zap.String("listing_id", listingID),
		zap.String("handle", handle),
		zap.Error(cause))
}
