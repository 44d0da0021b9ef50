package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/auth"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/media"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.AccountUseCase = (*accountUseCase)(nil)

var errInvalidCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)

type accountUseCase struct {
	userRepo domain.UserRepository
	issuer   *auth.Issuer
	sessions auth.SessionStore
	media    domain.MediaStore
	log      *logrus.Logger
}

func NewAccountUseCase(repo domain.UserRepository, issuer *auth.Issuer, sessions auth.SessionStore, store domain.MediaStore, logger *logrus.Logger) domain.AccountUseCase {
	return &accountUseCase{
		userRepo: repo,
		issuer:   issuer,
		sessions: sessions,
		media:    store,
		log:      logger,
	}
}

func (uc *accountUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	uc.log.Infof("Use Case: Attempting registration for username: %s", username)

	if username == "" || len(username) > 150 {
		uc.log.Warn("Use Case: Registration failed - bad username")
		return nil, fmt.Errorf("%w: username must be 1 to 150 characters", domain.ErrValidation)
	}
	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	if err := validatePassword(input.Password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", username, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	created, err := uc.userRepo.CreateUserWithProfile(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hashedPassword),
		IsStaff:      input.IsStaff,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", username, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %d, Username: %s", created.ID, created.Username)
	return created, nil
}

func (uc *accountUseCase) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	username = strings.TrimSpace(username)
	uc.log.Infof("Use Case: Attempting authentication for username: %s", username)
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := uc.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", username)
			return nil, errInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", username, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %d)", username, user.ID)
			return nil, errInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", username, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	pair, err := uc.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %d)", username, user.ID)
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh session
// is consumed, so a token can be used only once.
func (uc *accountUseCase) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := uc.issuer.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		uc.log.Warnf("Use Case: Refresh rejected: %v", err)
		return nil, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
	}

	sessionUserID, err := uc.sessions.Consume(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			uc.log.Warnf("Use Case: Refresh token %s for user %d was already used or revoked", claims.ID, userID)
			return nil, fmt.Errorf("%w: refresh token is no longer valid", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if sessionUserID != userID {
		uc.log.Errorf("Use Case: Refresh session %s belongs to user %d, token claims %d", claims.ID, sessionUserID, userID)
		return nil, fmt.Errorf("%w: refresh token is no longer valid", domain.ErrUnauthorized)
	}

	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return uc.issuePair(ctx, user)
}

func (uc *accountUseCase) Logout(ctx context.Context, refreshToken string) error {
	claims, err := uc.issuer.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
	}
	if _, err := uc.sessions.Consume(ctx, claims.ID); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		return err
	}
	uc.log.Infof("Use Case: Refresh session %s revoked", claims.ID)
	return nil
}

func (uc *accountUseCase) issuePair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, err := uc.issuer.IssueAccess(user.ID, user.IsStaff)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := uc.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, jti, user.ID, uc.issuer.RefreshTTL()); err != nil {
		uc.log.Errorf("Use Case: Failed to store refresh session for user %d: %v", user.ID, err)
		return nil, err
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (uc *accountUseCase) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user ID", domain.ErrValidation)
	}
	return uc.userRepo.GetUserByID(ctx, userID)
}

func (uc *accountUseCase) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error) {
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if !isValidEmail(email) {
			return nil, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
		}
		patch.Email = &email
	}
	if patch.Location != nil && len(*patch.Location) > 100 {
		return nil, fmt.Errorf("%w: location is limited to 100 characters", domain.ErrValidation)
	}
	uc.log.Infof("Use Case: Updating profile of user %d", userID)
	return uc.userRepo.UpdateProfile(ctx, userID, patch)
}

func (uc *accountUseCase) SetAvatar(ctx context.Context, userID int64, upload domain.Upload) (*domain.User, error) {
	if !media.IsAllowedImage(upload.ContentType) {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, upload.ContentType)
	}
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := uc.media.Save(ctx, "avatars", upload)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to store avatar for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not store avatar: %w", err)
	}
	updated, err := uc.userRepo.UpdateProfile(ctx, userID, domain.ProfilePatch{Avatar: &url})
	if err != nil {
		_ = uc.media.Delete(ctx, url)
		return nil, err
	}
	if user.Profile.Avatar != "" {
		if err := uc.media.Delete(ctx, user.Profile.Avatar); err != nil {
			uc.log.Warnf("Use Case: Could not delete previous avatar of user %d: %v", userID, err)
		}
	}
	return updated, nil
}

func (uc *accountUseCase) ListCustomers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return uc.userRepo.ListCustomers(ctx, limit, offset)
}

// isValidEmail provides a basic check for email format.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

// validatePassword requires at least 8 characters mixing letters and digits.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	hasLetter := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return errors.New("password must contain at least one letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
