package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterDeps struct {
	Listings       *ListingHandler
	Users          *UserHandler
	Assets         *AssetHandler // nil unless images are served from GridFS
	Tokens         TokenParser
	Metrics        *metrics.MetricsManager
	AllowedOrigins []string
	Logger         *logger.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger.Named("http")))
	r.Use(Metrics(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Assets != nil {
		r.Get("/assets/{handle}", d.Assets.HandleGetAsset)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", d.Users.HandleRegister)
		r.Post("/users/login", d.Users.HandleLogin)
		r.Get("/listings", d.Listings.HandleBrowse)
		r.Get("/listings/{id}", d.Listings.HandleGetListing)

		r.Group(func(r chi.Router) {
			r.Use(JWTAuth(d.Tokens, d.Logger))

			r.Get("/users/me", d.Users.HandleGetMe)
			r.Put("/users/me", d.Users.HandleUpdateMe)
			r.Put("/users/me/password", d.Users.HandleChangePassword)
			r.Post("/users/me/photo", d.Users.HandleChangePhoto)
			r.Get("/users/me/dashboard", d.Users.HandleDashboard)
			r.Get("/users/me/listings", d.Listings.HandleListMine)
			r.Get("/users/me/listings/search", d.Listings.HandleSearchMine)

			r.Post("/listings", d.Listings.HandleCreateListing)
			r.Put("/listings/{id}", d.Listings.HandleUpdateListing)
			r.Delete("/listings/{id}", d.Listings.HandleDeleteListing)
		})
	})

	return otelhttp.NewHandler(r, "classifieds-http")
}
