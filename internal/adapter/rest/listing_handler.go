package rest

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	userdomain "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("classifieds-service/rest-handler")

type ListingService interface {
	CreateListing(ctx context.Context, actor domain.Actor, fields domain.Fields, upload *domain.Upload) (*domain.Listing, error)
	UpdateListing(ctx context.Context, actor domain.Actor, id string, fields domain.Fields, upload *domain.Upload) (*domain.Listing, error)
	DeleteListing(ctx context.Context, actor domain.Actor, id string) error
	GetListingByID(ctx context.Context, id string) (*domain.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error)
	SearchOwnerListings(ctx context.Context, ownerID, text string) ([]*domain.Listing, error)
	FilterByCategory(ctx context.Context, category string) ([]*domain.Listing, error)
}

type ProfileReader interface {
	GetProfile(ctx context.Context, actor domain.Actor) (*userdomain.User, error)
}

type Mailer interface {
	SendListingCreatedEmail(toEmail, listingTitle string) error
}

// categoryViews names the browse template for each category.
var categoryViews = map[domain.Category]string{
	domain.CategoryBooks:      "book",
	domain.CategoryPhones:     "phone",
	domain.CategoryCars:       "car",
	domain.CategorySpareParts: "spareParts",
	domain.CategoryLaptop:     "laptop",
	domain.CategoryRandom:     "other",
}

func CategoryView(category string) string {
	return categoryViews[domain.Category(category)]
}

type browseResponse struct {
	Category string            `json:"category"`
	View     string            `json:"view"`
	Listings []*domain.Listing `json:"listings"`
}

type ListingHandler struct {
	listings  ListingService
	profiles  ProfileReader
	mailer    Mailer
	maxUpload int64
	logger    *logger.Logger
}

// NewListingHandler accepts a nil mailer or profiles; the created-listing email is then skipped.
func NewListingHandler(listings ListingService, profiles ProfileReader, mailer Mailer, maxUpload int64, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		listings:  listings,
		profiles:  profiles,
		mailer:    mailer,
		maxUpload: maxUpload,
		logger:    log.Named("listing_handler"),
	}
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	fields, upload, err := decodeListing(w, r, h.maxUpload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ctx, span := tracer.Start(r.Context(), "Handler.CreateListing", oteltrace.WithAttributes(
		attribute.String("owner_id", actor.ID),
		attribute.Bool("with_image", upload != nil),
	))
	defer span.End()

	created, err := h.listings.CreateListing(ctx, actor, fields, upload)
	if err != nil {
		span.RecordError(err)
		writeError(w, h.logger, err)
		return
	}
	span.SetAttributes(attribute.String("created_listing_id", created.ID))
	h.notifyCreated(ctx, actor, created)
	writeJSON(w, http.StatusCreated, created)
}

func (h *ListingHandler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	fields, upload, err := decodeListing(w, r, h.maxUpload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "Handler.UpdateListing", oteltrace.WithAttributes(
		attribute.String("listing_id", id),
		attribute.Bool("with_image", upload != nil),
	))
	defer span.End()

	updated, err := h.listings.UpdateListing(ctx, actor, id, fields, upload)
	if err != nil {
		span.RecordError(err)
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ListingHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "Handler.DeleteListing", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	if err := h.listings.DeleteListing(ctx, actor, id); err != nil {
		span.RecordError(err)
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListingByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleBrowse serves GET /api/listings?category=. Unknown categories yield an empty list and view.
func (h *ListingHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	listings, err := h.listings.FilterByCategory(r.Context(), category)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, browseResponse{Category: category, View: CategoryView(category), Listings: listings})
}

func (h *ListingHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	listings, err := h.listings.ListByOwner(r.Context(), actor.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) HandleSearchMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	listings, err := h.listings.SearchOwnerListings(r.Context(), actor.ID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) notifyCreated(ctx context.Context, actor domain.Actor, listing *domain.Listing) {
	if h.mailer == nil || h.profiles == nil {
		return
	}
	owner, err := h.profiles.GetProfile(ctx, actor)
	if err != nil || owner.Email == "" {
		return
	}
	if err := h.mailer.SendListingCreatedEmail(owner.Email, listing.Title); err != nil {
		h.logger.Warn("failed to send listing created email", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}
