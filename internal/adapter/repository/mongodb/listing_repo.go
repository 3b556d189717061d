package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		logger:     log.Named("listing_repo"),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("ListingRepository.Create: InsertOne failed", zap.String("owner_id", listing.OwnerID), zap.Error(err))
		return err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	listing.ID = oid.Hex()
	r.logger.Debug("ListingRepository.Create: listing inserted", zap.String("listing_id", listing.ID))
	return nil
}

// Update replaces the stored document with listing as a whole.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil || doc.ID.IsZero() {
		return domain.ErrListingNotFound
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		r.logger.Error("ListingRepository.Update: ReplaceOne failed", zap.String("listing_id", listing.ID), zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("ListingRepository.Delete: DeleteOne failed", zap.String("listing_id", id), zap.Error(err))
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}

	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("ListingRepository.FindByID: FindOne failed", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	query, opts := buildListingQuery(filter)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("ListingRepository.FindByFilter: Find failed", zap.Any("filter", filter), zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("ListingRepository.FindByFilter: cursor decode failed", zap.Error(err))
		return nil, err
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// buildListingQuery translates filter into a Mongo query. Text is matched as a
// literal, case-insensitive substring of title, description or category.
// Results come back in insertion order unless NewestFirst is set.
func buildListingQuery(filter domain.Filter) (bson.M, *options.FindOptions) {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Text != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Text), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
		}
	}

	sort := bson.D{{Key: "_id", Value: 1}}
	if filter.NewestFirst {
		sort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	return query, options.Find().SetSort(sort)
}
