package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	listing "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	profileAssetFolder = "classifieds/profiles"
	minPasswordLength  = 8
)

var profileUploadConstraints = listing.UploadConstraints{
	Folder:         profileAssetFolder,
	AllowedFormats: listing.AllowedImageFormats,
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

type RegisterInput struct {
	Username        string
	Email           string
	ContactNo       string
	Password        string
	ConfirmPassword string
}

type UserUsecase struct {
	repo     domain.UserRepository
	assets   listing.AssetStore
	tokens   TokenIssuer
	logger   *logger.Logger
	hashCost int
	now      func() time.Time
}

func NewUserUsecase(repo domain.UserRepository, assets listing.AssetStore, tokens TokenIssuer, log *logger.Logger) *UserUsecase {
	return &UserUsecase{
		repo:     repo,
		assets:   assets,
		tokens:   tokens,
		logger:   log.Named("user_usecase"),
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *UserUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username", domain.ErrMissingField)
	}
	if strings.TrimSpace(in.ContactNo) == "" {
		return nil, fmt.Errorf("%w: contact_no", domain.ErrMissingField)
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if !strongPassword(in.Password) {
		return nil, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := uc.now()
	user := &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		ContactNo:    strings.TrimSpace(in.ContactNo),
		PasswordHash: string(hash),
		Role:         listing.RoleNormal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		uc.logger.Error("UserUsecase.Register: failed to create user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Info("UserUsecase.Register: user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login returns a signed session token. Unknown users and wrong passwords are indistinguishable.
func (uc *UserUsecase) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := uc.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Debug("UserUsecase.Login: password mismatch", zap.String("user_id", user.ID))
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (uc *UserUsecase) GetProfile(ctx context.Context, actor listing.Actor) (*domain.User, error) {
	if actor.ID == "" {
		return nil, domain.ErrUserNotFound
	}
	return uc.repo.FindByID(ctx, actor.ID)
}

func (uc *UserUsecase) UpdateProfile(ctx context.Context, actor listing.Actor, email, contactNo string) (*domain.User, error) {
	user, err := uc.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(contactNo) == "" {
		return nil, fmt.Errorf("%w: contact_no", domain.ErrMissingField)
	}

	user.Email = strings.TrimSpace(email)
	user.ContactNo = strings.TrimSpace(contactNo)
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUsecase) ChangePassword(ctx context.Context, actor listing.Actor, current, next, confirm string) error {
	user, err := uc.GetProfile(ctx, actor)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}
	if next != confirm {
		return domain.ErrPasswordMismatch
	}
	if !strongPassword(next) {
		return domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), uc.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return err
	}
	uc.logger.Info("UserUsecase.ChangePassword: password changed", zap.String("user_id", user.ID))
	return nil
}

// ChangeProfilePhoto uploads the new photo before touching the old one. A
// failed upload leaves the profile unchanged; a failed cleanup is only logged.
func (uc *UserUsecase) ChangeProfilePhoto(ctx context.Context, actor listing.Actor, upload listing.Upload) (*domain.User, error) {
	user, err := uc.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	stored, err := uc.assets.Upload(ctx, upload, profileUploadConstraints)
	if err != nil {
		uc.logger.Error("UserUsecase.ChangeProfilePhoto: upload failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, listing.StorageError("upload profile photo", err)
	}
	photo := listing.NewImage(stored.URL, stored.Handle)
	if photo == nil {
		return nil, listing.StorageError("upload profile photo", errors.New("asset store returned an incomplete image reference"))
	}

	if previous := user.Photo; previous.HasHandle() {
		if err := uc.assets.Delete(ctx, previous.Handle); err != nil {
			uc.logger.Warn("UserUsecase.ChangeProfilePhoto: previous photo left orphaned",
				zap.String("user_id", user.ID), zap.String("handle", previous.Handle), zap.Error(err))
		}
	}

	user.Photo = photo
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		uc.logger.Error("UserUsecase.ChangeProfilePhoto: failed to persist photo",
			zap.String("user_id", user.ID), zap.String("handle", photo.Handle), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (uc *UserUsecase) CountUsers(ctx context.Context) (int64, error) {
	return uc.repo.Count(ctx)
}

func strongPassword(p string) bool {
	if len(p) < minPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
