package rest

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/dashboard"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	userdomain "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/usecase"
)

type UserService interface {
	ProfileReader
	Register(ctx context.Context, in usecase.RegisterInput) (*userdomain.User, error)
	Login(ctx context.Context, username, password string) (string, *userdomain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, email, contactNo string) (*userdomain.User, error)
	ChangePassword(ctx context.Context, actor domain.Actor, current, next, confirm string) error
	ChangeProfilePhoto(ctx context.Context, actor domain.Actor, upload domain.Upload) (*userdomain.User, error)
}

type DashboardService interface {
	Dashboard(ctx context.Context, actor domain.Actor) (*dashboard.Summary, error)
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	ContactNo       string `json:"contact_no"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  *userdomain.User `json:"user"`
}

type profileRequest struct {
	Email     string `json:"email"`
	ContactNo string `json:"contact_no"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserHandler struct {
	users     UserService
	dashboard DashboardService
	maxUpload int64
	logger    *logger.Logger
}

func NewUserHandler(users UserService, dash DashboardService, maxUpload int64, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, dashboard: dash, maxUpload: maxUpload, logger: log.Named("user_handler")}
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.Register(r.Context(), usecase.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		ContactNo:       req.ContactNo,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin returns the token in the body and also sets it as an HttpOnly cookie.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	token, user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *UserHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	user, err := h.users.GetProfile(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), actor, req.Email, req.ContactNo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleChangePhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	upload, err := decodePhoto(w, r, h.maxUpload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.ChangeProfilePhoto(r.Context(), actor, upload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errUnauthorized)
		return
	}
	summary, err := h.dashboard.Dashboard(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
