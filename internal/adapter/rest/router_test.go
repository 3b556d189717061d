package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/dashboard"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/metrics"
	userdomain "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1 << 16

type fixture struct {
	listings *MockListingService
	users    *MockUserService
	dash     *MockDashboard
	mailer   *MockMailer
	tokens   *auth.TokenManager
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		listings: new(MockListingService),
		users:    new(MockUserService),
		dash:     new(MockDashboard),
		mailer:   new(MockMailer),
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
	}
	log := logger.NewNop()
	f.handler = NewRouter(RouterDeps{
		Listings:       NewListingHandler(f.listings, f.users, f.mailer, testMaxUpload, log),
		Users:          NewUserHandler(f.users, f.dash, testMaxUpload, log),
		Tokens:         f.tokens,
		Metrics:        metrics.NewMetricsManager("rest_test"),
		AllowedOrigins: []string{"*"},
		Logger:         log,
	})
	return f
}

func (f *fixture) token(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	tok, err := f.tokens.Issue(userID, string(role))
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileName string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile(ImageField, fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem {
	t.Helper()
	var p problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/users/me/listings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(authed(httptest.NewRequest(http.MethodDelete, "/api/listings/l1", nil), "garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.listings.AssertNotCalled(t, "DeleteListing", mock.Anything, mock.Anything, mock.Anything)
}

func TestTokenCookieIsAccepted(t *testing.T) {
	f := newFixture(t)
	f.listings.On("ListByOwner", mock.Anything, "u1").Return([]*domain.Listing{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/listings", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: f.token(t, "u1", domain.RoleNormal)})
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateListing_Multipart(t *testing.T) {
	f := newFixture(t)
	actor := domain.Actor{ID: "u1", Role: domain.RoleNormal}
	f.listings.On("CreateListing", mock.Anything, actor, mock.MatchedBy(func(fields domain.Fields) bool {
		return *fields.Title == "Bike" && *fields.Price == 50 && fields.Category == nil
	}), mock.MatchedBy(func(u *domain.Upload) bool {
		return u != nil && u.FileName == "bike.png" && string(u.Data) == "png-bytes"
	})).Return(&domain.Listing{ID: "l1", OwnerID: "u1", Title: "Bike"}, nil).Once()
	f.users.On("GetProfile", mock.Anything, actor).Return(&userdomain.User{ID: "u1", Email: "u1@example.com"}, nil).Once()
	f.mailer.On("SendListingCreatedEmail", "u1@example.com", "Bike").Return(errors.New("smtp down")).Once()

	req := multipartRequest(t, http.MethodPost, "/api/listings",
		map[string]string{"title": "Bike", "description": "Red", "price": "50", "condition": "used"},
		"bike.png", []byte("png-bytes"))
	rec := f.do(authed(req, f.token(t, "u1", domain.RoleNormal)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got domain.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "l1", got.ID)
	f.listings.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestCreateListing_JSONWithoutImage(t *testing.T) {
	f := newFixture(t)
	f.listings.On("CreateListing", mock.Anything, mock.Anything, mock.Anything, (*domain.Upload)(nil)).
		Return(&domain.Listing{ID: "l2"}, nil).Once()
	f.users.On("GetProfile", mock.Anything, mock.Anything).Return(&userdomain.User{ID: "u1"}, nil).Once()

	req := jsonRequest(http.MethodPost, "/api/listings", map[string]any{"title": "Lamp", "price": 3, "description": "d", "condition": "new"})
	rec := f.do(authed(req, f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.mailer.AssertNotCalled(t, "SendListingCreatedEmail", mock.Anything, mock.Anything)
}

func TestCreateListing_BadPrice(t *testing.T) {
	f := newFixture(t)
	req := multipartRequest(t, http.MethodPost, "/api/listings", map[string]string{"title": "Bike", "price": "cheap"}, "", nil)
	rec := f.do(authed(req, f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeProblem(t, rec).Error)
}

func TestCreateListing_TooLarge(t *testing.T) {
	f := newFixture(t)
	req := multipartRequest(t, http.MethodPost, "/api/listings", map[string]string{"title": "Bike"},
		"big.png", bytes.Repeat([]byte("x"), 2*testMaxUpload))
	rec := f.do(authed(req, f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateListing_UnsupportedContentType(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/listings", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "text/plain")
	rec := f.do(authed(req, f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"not found", domain.ErrListingNotFound, http.StatusNotFound},
		{"validation", domain.NewValidationError("price", "must not be negative"), http.StatusBadRequest},
		{"unsupported format", domain.StorageError("upload", domain.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{"storage", domain.StorageError("upload", io.ErrUnexpectedEOF), http.StatusBadGateway},
		{"persistence", domain.PersistenceError("update", io.ErrClosedPipe), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.listings.On("UpdateListing", mock.Anything, mock.Anything, "l1", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			req := jsonRequest(http.MethodPut, "/api/listings/l1", map[string]any{"price": 40})
			rec := f.do(authed(req, f.token(t, "u2", domain.RoleNormal)))

			assert.Equal(t, tc.code, rec.Code)
			p := decodeProblem(t, rec)
			assert.NotEmpty(t, p.Error)
			if tc.code == http.StatusInternalServerError {
				assert.NotContains(t, p.Message, "closed pipe")
			}
		})
	}
}

func TestDeleteListing(t *testing.T) {
	f := newFixture(t)
	f.listings.On("DeleteListing", mock.Anything, domain.Actor{ID: "u1", Role: domain.RoleNormal}, "l1").Return(nil).Once()

	rec := f.do(authed(httptest.NewRequest(http.MethodDelete, "/api/listings/l1", nil), f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.listings.AssertExpectations(t)
}

func TestBrowseByCategory(t *testing.T) {
	f := newFixture(t)
	f.listings.On("FilterByCategory", mock.Anything, "spare-parts").Return([]*domain.Listing{{ID: "p1"}}, nil).Once()
	f.listings.On("FilterByCategory", mock.Anything, "boats").Return([]*domain.Listing{}, nil).Once()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/listings?category=spare-parts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got browseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "spareParts", got.View)
	assert.Len(t, got.Listings, 1)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/listings?category=boats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.View)
	assert.Empty(t, got.Listings)
}

func TestCategoryView(t *testing.T) {
	assert.Equal(t, "book", CategoryView("books"))
	assert.Equal(t, "phone", CategoryView("phones"))
	assert.Equal(t, "car", CategoryView("cars"))
	assert.Equal(t, "laptop", CategoryView("laptop"))
	assert.Equal(t, "other", CategoryView("random"))
	assert.Equal(t, "", CategoryView("Books"))
}

func TestSearchMine(t *testing.T) {
	f := newFixture(t)
	f.listings.On("SearchOwnerListings", mock.Anything, "u1", "red bike").Return([]*domain.Listing{{ID: "l1"}}, nil).Once()

	rec := f.do(authed(httptest.NewRequest(http.MethodGet, "/api/users/me/listings/search?q=red+bike", nil), f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusOK, rec.Code)
	f.listings.AssertExpectations(t)
}

func TestGetListing_Public(t *testing.T) {
	f := newFixture(t)
	f.listings.On("GetListingByID", mock.Anything, "missing").Return(nil, domain.ErrListingNotFound).Once()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/listings/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	f.users.On("Register", mock.Anything, usecase.RegisterInput{Username: "alice", ContactNo: "555", Password: "Secret123", ConfirmPassword: "Secret123"}).
		Return(&userdomain.User{ID: "u1", Username: "alice"}, nil).Once()
	f.users.On("Login", mock.Anything, "alice", "wrong").Return("", nil, userdomain.ErrInvalidCredentials).Once()
	f.users.On("Login", mock.Anything, "alice", "Secret123").Return("tok", &userdomain.User{ID: "u1"}, nil).Once()

	rec := f.do(jsonRequest(http.MethodPost, "/api/users/register", map[string]string{
		"username": "alice", "contact_no": "555", "password": "Secret123", "confirm_password": "Secret123"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(jsonRequest(http.MethodPost, "/api/users/login", map[string]string{"username": "alice", "password": "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(jsonRequest(http.MethodPost, "/api/users/login", map[string]string{"username": "alice", "password": "Secret123"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, TokenCookie, rec.Result().Cookies()[0].Name)
}

func TestRegister_Conflict(t *testing.T) {
	f := newFixture(t)
	f.users.On("Register", mock.Anything, mock.Anything).Return(nil, userdomain.ErrUsernameTaken).Once()

	rec := f.do(jsonRequest(http.MethodPost, "/api/users/register", map[string]string{"username": "alice"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChangePhoto(t *testing.T) {
	f := newFixture(t)
	actor := domain.Actor{ID: "u1", Role: domain.RoleNormal}
	f.users.On("ChangeProfilePhoto", mock.Anything, actor, mock.MatchedBy(func(u domain.Upload) bool { return u.FileName == "me.jpg" })).
		Return(&userdomain.User{ID: "u1", Photo: &domain.Image{URL: "u", Handle: "h"}}, nil).Once()

	rec := f.do(authed(multipartRequest(t, http.MethodPost, "/api/users/me/photo", nil, "me.jpg", []byte("jpg")), f.token(t, "u1", domain.RoleNormal)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(authed(multipartRequest(t, http.MethodPost, "/api/users/me/photo", nil, "", nil), f.token(t, "u1", domain.RoleNormal)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	f.users.On("ChangePassword", mock.Anything, mock.Anything, "old", "New12345", "New12345").Return(nil).Once()

	rec := f.do(authed(jsonRequest(http.MethodPut, "/api/users/me/password", passwordRequest{
		CurrentPassword: "old", NewPassword: "New12345", ConfirmPassword: "New12345"}), f.token(t, "u1", domain.RoleNormal)))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDashboardPassesRole(t *testing.T) {
	f := newFixture(t)
	admin := domain.Actor{ID: "root", Role: domain.RoleAdmin}
	f.dash.On("Dashboard", mock.Anything, admin).Return(&dashboard.Summary{
		Listings: []*domain.Listing{}, CategoryCounts: map[string]int{}, AdminStats: &dashboard.AdminStats{TotalUsers: 3},
	}, nil).Once()

	rec := f.do(authed(httptest.NewRequest(http.MethodGet, "/api/users/me/dashboard", nil), f.token(t, "root", domain.RoleAdmin)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_users":3`)
}
