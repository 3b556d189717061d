package mongodb

import (
	"fmt"
	"time"

	listing "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	user "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type imageDocument struct {
	URL    string `bson:"url"`
	Handle string `bson:"handle"`
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Condition   string             `bson:"condition"`
	Category    string             `bson:"category,omitempty"`
	Image       *imageDocument     `bson:"image,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	ContactNo    string             `bson:"contact_no"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Photo        *imageDocument     `bson:"photo,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// parseID maps an empty id to NilObjectID so that InsertOne generates one.
func parseID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id format %q: %w", id, err)
	}
	return oid, nil
}

func toImageDocument(img *listing.Image) *imageDocument {
	if img == nil {
		return nil
	}
	return &imageDocument{URL: img.URL, Handle: img.Handle}
}

// toDomainImage drops half-populated references so the domain never sees a URL without a handle.
func toDomainImage(d *imageDocument) *listing.Image {
	if d == nil {
		return nil
	}
	return listing.NewImage(d.URL, d.Handle)
}

func toListingDocument(l *listing.Listing) (*listingDocument, error) {
	oid, err := parseID(l.ID)
	if err != nil {
		return nil, err
	}
	return &listingDocument{
		ID:          oid,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Condition:   string(l.Condition),
		Category:    string(l.Category),
		Image:       toImageDocument(l.Image),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func toDomainListing(d *listingDocument) *listing.Listing {
	return &listing.Listing{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Condition:   listing.Condition(d.Condition),
		Category:    listing.Category(d.Category),
		Image:       toDomainImage(d.Image),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*listing.Listing {
	out := make([]*listing.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}

func toUserDocument(u *user.User) (*userDocument, error) {
	oid, err := parseID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:           oid,
		Username:     u.Username,
		Email:        u.Email,
		ContactNo:    u.ContactNo,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Photo:        toImageDocument(u.Photo),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func toDomainUser(d *userDocument) *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		ContactNo:    d.ContactNo,
		PasswordHash: d.PasswordHash,
		Role:         listing.Role(d.Role),
		Photo:        toDomainImage(d.Photo),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
