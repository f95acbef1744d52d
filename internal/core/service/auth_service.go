package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

const defaultBcryptCost = 12

// AuthService implements session management, the credential login state
// machine, and the hashed single-use token flows (verification and password
// reset).
type AuthService struct {
	users      ports.UserRepository
	tenants    ports.TenantRepository
	tokens     ports.TokenService
	mailer     ports.Mailer
	logger     zerolog.Logger
	bcryptCost int
}

func NewAuthService(users ports.UserRepository, tenants ports.TenantRepository, tokens ports.TokenService, mailer ports.Mailer, bcryptCost int, logger zerolog.Logger) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = defaultBcryptCost
	}
	return &AuthService{
		users:      users,
		tenants:    tenants,
		tokens:     tokens,
		mailer:     mailer,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// issueSession signs a token pair, appends the refresh token to the user's
// stored list (pruning expired entries, keeping the 5 most recent), persists
// the user, and assembles the session payload.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User, deviceInfo string) (*ports.Session, error) {
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.AddRefreshToken(pair.RefreshToken, deviceInfo, now, now.Add(s.tokens.RefreshTTL()))

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenants.FindByID(ctx, updated.TenantID)
	if err != nil {
		// The session is still usable without tenant branding.
		s.logger.Warn().Err(err).Str("tenant_id", updated.TenantID).Msg("session tenant lookup failed")
		tenant = nil
	}

	return &ports.Session{
		Tokens:      pair,
		User:        updated,
		Tenant:      tenant,
		Permissions: domain.RolePermissions(updated.Role),
	}, nil
}

// Register self-registers a user into the tenant. The account starts pending
// when the tenant requires email verification, active otherwise.
func (s *AuthService) Register(ctx context.Context, tenant *domain.Tenant, input ports.RegisterInput) (*ports.RegisterResult, error) {
	if input.Password != input.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if !tenant.Settings.AllowUserRegistration {
		return nil, domain.ErrRegistrationClosed
	}
	if !tenant.CheckUserLimit() {
		return nil, domain.ErrUserLimitReached
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.users.FindByEmailAndTenant(ctx, email, tenant.ID); err == nil && existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := domain.StatusActive
	if tenant.Settings.RequireEmailVerification {
		status = domain.StatusPending
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		PasswordHash: hash,
		TenantID:     tenant.ID,
		Role:         domain.RoleUser,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.tenants.IncrementUsers(ctx, tenant.ID, 1); err != nil {
		// User exists but the counter is stale; the recompute job reconciles.
		s.logger.Error().Err(err).Str("tenant_id", tenant.ID).Msg("usage increment failed after user create")
	}

	if !tenant.Settings.RequireEmailVerification {
		session, err := s.issueSession(ctx, created, input.DeviceInfo)
		if err != nil {
			return nil, err
		}
		return &ports.RegisterResult{Session: session}, nil
	}

	raw, hashTok, expires, err := domain.EmailVerificationToken.Generate(now)
	if err != nil {
		return nil, err
	}
	created.EmailVerificationHash = hashTok
	created.EmailVerificationExpires = expires
	if created, err = s.users.Update(ctx, created); err != nil {
		return nil, err
	}

	mail := ports.Email{
		To:      created.Email,
		Subject: "Email Verification",
		Message: fmt.Sprintf("Hello %s,\n\nPlease verify your email by clicking: %s/%s\n\nThis link will expire in 24 hours.", created.FirstName, input.VerifyURLBase, raw),
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		// Roll back the token so the user is never stuck with one that was
		// never delivered.
		created.EmailVerificationHash = ""
		created.EmailVerificationExpires = time.Time{}
		if _, uerr := s.users.Update(ctx, created); uerr != nil {
			s.logger.Error().Err(uerr).Str("user_id", created.ID).Msg("verification token rollback failed")
		}
		s.logger.Error().Err(err).Str("email", created.Email).Msg("verification email failed")
		return nil, domain.ErrEmailDelivery
	}

	return &ports.RegisterResult{PendingVerification: true}, nil
}

// Login runs the credential state machine: lookup, lockout gate, password
// compare with attempt accounting, status gate, then session issuance.
// Unknown email and wrong password collapse into one error to prevent user
// enumeration; no other flow does this.
func (s *AuthService) Login(ctx context.Context, tenant *domain.Tenant, input ports.LoginInput) (*ports.Session, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.users.FindByEmailAndTenant(ctx, email, tenant.ID)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if user.IsLocked(now) {
		return nil, domain.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		user.RegisterFailedLogin(now)
		if _, uerr := s.users.Update(ctx, user); uerr != nil {
			s.logger.Error().Err(uerr).Str("user_id", user.ID).Msg("failed-login bookkeeping not persisted")
		}
		if user.IsLocked(now) {
			s.logger.Warn().Str("user_id", user.ID).Str("tenant_id", tenant.ID).Msg("account locked after repeated failures")
		}
		return nil, domain.ErrInvalidCredentials
	}

	if user.Status != domain.StatusActive {
		if user.Status == domain.StatusPending {
			return nil, domain.ErrEmailNotVerified
		}
		return nil, domain.ErrAccountInactive
	}

	user.RegisterSuccessfulLogin(now)

	session, err := s.issueSession(ctx, user, input.DeviceInfo)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("tenant_id", tenant.ID).Msg("user logged in")
	return session, nil
}

// Logout revokes the presented refresh token by removing it from the stored
// list. The access token simply ages out.
func (s *AuthService) Logout(ctx context.Context, user *domain.User, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if user.RemoveRefreshToken(refreshToken) {
		if _, err := s.users.Update(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

// Refresh exchanges a stored refresh token for a fresh pair. The token must
// verify cryptographically AND exist unexpired in the user's list.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, deviceInfo string) (*ports.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := s.tokens.RefreshSubject(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserGone
	}

	if !s.tokens.VerifyRefresh(refreshToken, user, time.Now().UTC()) {
		return nil, domain.ErrTokenInvalid
	}

	return s.issueSession(ctx, user, deviceInfo)
}

// Authenticate validates an access token against the resolved tenant context
// and returns the live user record.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string, tenant *domain.Tenant) (*domain.User, error) {
	userID, issuedAt, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserGone
	}

	if user.ChangedPasswordAfter(issuedAt) {
		return nil, domain.ErrPasswordChanged
	}
	if user.Status != domain.StatusActive {
		return nil, domain.ErrAccountInactive
	}
	if tenant != nil && user.TenantID != tenant.ID {
		return nil, domain.ErrTenantMismatch
	}

	// Best-effort; a failed touch never blocks the request.
	if err := s.users.TouchActivity(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Debug().Err(err).Str("user_id", user.ID).Msg("last-activity touch failed")
	}

	return user, nil
}

// ForgotPassword emails a 10-minute single-use reset token. Unlike login,
// an unknown email is reported as not found.
func (s *AuthService) ForgotPassword(ctx context.Context, tenant *domain.Tenant, email, resetURLBase string) error {
	user, err := s.users.FindByEmailAndTenant(ctx, strings.ToLower(strings.TrimSpace(email)), tenant.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	raw, hash, expires, err := domain.PasswordResetToken.Generate(now)
	if err != nil {
		return err
	}
	user.PasswordResetHash = hash
	user.PasswordResetExpires = expires
	if user, err = s.users.Update(ctx, user); err != nil {
		return err
	}

	mail := ports.Email{
		To:      user.Email,
		Subject: "Your password reset token (valid for 10 min)",
		Message: fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Use this link to set a new password: %s/%s\n\nThis link will expire in 10 minutes. If you didn't request a reset, please ignore this email.", user.FirstName, resetURLBase, raw),
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		user.PasswordResetHash = ""
		user.PasswordResetExpires = time.Time{}
		if _, uerr := s.users.Update(ctx, user); uerr != nil {
			s.logger.Error().Err(uerr).Str("user_id", user.ID).Msg("reset token rollback failed")
		}
		s.logger.Error().Err(err).Str("email", user.Email).Msg("password reset email failed")
		return domain.ErrEmailDelivery
	}

	return nil
}

// ResetPassword consumes a valid reset token, sets the new password, and
// logs the user in. Tokens from any earlier second die with the change;
// the session issued below shares the change's second and stays valid.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, confirmPassword, deviceInfo string) (*ports.Session, error) {
	if password != confirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	now := time.Now().UTC()
	user, err := s.users.FindByTokenHash(ctx, ports.TokenPasswordReset, domain.HashToken(rawToken), now)
	if err != nil {
		return nil, domain.ErrSingleUseTokenSpent
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = now
	user.PasswordResetHash = ""
	user.PasswordResetExpires = time.Time{}
	// Every previously stored refresh token predates the change.
	user.RefreshTokens = nil

	if user, err = s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset completed")
	return s.issueSession(ctx, user, deviceInfo)
}

// UpdatePassword changes the password of an authenticated user after
// re-checking the current one, then issues a fresh session.
func (s *AuthService) UpdatePassword(ctx context.Context, user *domain.User, currentPassword, newPassword, deviceInfo string) (*ports.Session, error) {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return nil, domain.ErrWrongPassword
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = time.Now().UTC()

	if user, err = s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, deviceInfo)
}

// VerifyEmail consumes a valid verification token: pending → active.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	now := time.Now().UTC()
	user, err := s.users.FindByTokenHash(ctx, ports.TokenEmailVerification, domain.HashToken(rawToken), now)
	if err != nil {
		return domain.ErrSingleUseTokenSpent
	}

	user.IsEmailVerified = true
	user.Status = domain.StatusActive
	user.EmailVerificationHash = ""
	user.EmailVerificationExpires = time.Time{}

	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// UpdateProfile applies the self-service editable fields.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, update ports.ProfileUpdate) (*domain.User, error) {
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Department != nil {
		user.Department = *update.Department
	}
	if update.Title != nil {
		user.Title = *update.Title
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	user.UpdatedAt = time.Now().UTC()

	return s.users.Update(ctx, user)
}

// Describe assembles the session payload for an already authenticated user.
func (s *AuthService) Describe(ctx context.Context, user *domain.User) (*ports.Session, error) {
	tenant, err := s.tenants.FindByID(ctx, user.TenantID)
	if err != nil {
		tenant = nil
	}
	return &ports.Session{
		User:        user,
		Tenant:      tenant,
		Permissions: domain.RolePermissions(user.Role),
	}, nil
}
