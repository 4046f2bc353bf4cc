package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/email"
	"fittrack/fitness-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrEmailNotVerified     = errors.New("email address has not been confirmed")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrWeakPassword         = errors.New("password must be at least 6 characters")
	ErrUserNotFound         = errors.New("user not found")
)

const minPasswordLength = 6

// Token purposes. Only access tokens authenticate API requests.
const (
	TokenPurposeAccess   = "access"
	TokenPurposeSignup   = "signup"
	TokenPurposeRecovery = "recovery"
)

// Identity is what a verified access token tells about its bearer.
type Identity struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// VerifyEmail redeems a mailed token. tokenType is "signup" or "recovery";
	// both sign the user in and return an access token.
	VerifyEmail(ctx context.Context, token, tokenType string) (accessToken string, user *domain.User, err error)
	// RequestPasswordReset mails a recovery link when the address is known. It never reveals whether it is.
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	SignOut(ctx context.Context, identity Identity) error
	Authenticate(token string) (*Identity, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type AuthConfig struct {
	Secret                 string
	Expiration             time.Duration
	VerificationExpiration time.Duration
	BaseURL                string // public URL the mailed links point to
}

// authService implements the AuthService interface.
type authService struct {
	userRepo  repository.UserRepository
	mailer    email.Sender
	blocklist *TokenBlocklist
	cfg       AuthConfig
	now       Clock
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, mailer email.Sender, blocklist *TokenBlocklist, cfg AuthConfig, clock Clock) AuthService {
	if cfg.Secret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Hour
	}
	if cfg.VerificationExpiration <= 0 {
		cfg.VerificationExpiration = 24 * time.Hour
	}
	if blocklist == nil {
		blocklist = NewTokenBlocklist(0, clock)
	}
	return &authService{
		userRepo:  userRepo,
		mailer:    mailer,
		blocklist: blocklist,
		cfg:       cfg,
		now:       clockOrDefault(clock),
	}
}

// Register handles new user registration. With mail disabled the account is
// confirmed immediately and the link is only logged.
func (s *authService) Register(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	_, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	mailEnabled := s.mailer != nil && s.mailer.IsEnabled()
	user := &domain.User{
		ID:            uuid.NewString(),
		Email:         emailAddr,
		PasswordHash:  string(hashedPassword),
		EmailVerified: !mailEnabled,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	token, err := s.signToken(user, TokenPurposeSignup, s.cfg.VerificationExpiration)
	if err != nil {
		log.Errorf("sign verification token for %s: %s", user.ID, err)
		return nil, ErrTokenGeneration
	}
	link := s.link(token, TokenPurposeSignup)
	if mailEnabled {
		if err := s.mailer.SendVerification(ctx, user.Email, link); err != nil {
			log.Errorf("send verification mail to %s: %s", user.Email, err)
		}
	} else {
		log.Infof("mail disabled, account %s confirmed without verification (link: %s)", user.Email, link)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password cannot be empty", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	if !user.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.signToken(user, TokenPurposeAccess, s.cfg.Expiration)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token, tokenType string) (string, *domain.User, error) {
	if tokenType != TokenPurposeSignup && tokenType != TokenPurposeRecovery {
		return "", nil, fmt.Errorf("%w: unknown token type %q", ErrValidationFailed, tokenType)
	}
	claims, err := s.parse(token)
	if err != nil || claims.Purpose != tokenType {
		return "", nil, ErrInvalidToken
	}
	if s.blocklist.IsRevoked(claims.ID) {
		return "", nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidToken
		}
		return "", nil, err
	}

	if !user.EmailVerified {
		// a recovery link proves mailbox ownership too
		if err := s.userRepo.SetEmailVerified(ctx, user.ID); err != nil {
			return "", nil, err
		}
		user.EmailVerified = true
	}
	// mailed links are single use
	s.blocklist.Revoke(claims.ID, claims.ExpiresAt.Time)

	access, err := s.signToken(user, TokenPurposeAccess, s.cfg.Expiration)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	user.PasswordHash = ""
	return access, user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return fmt.Errorf("%w: email is required", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Errorf("password reset lookup for %s: %s", emailAddr, err)
		}
		return nil
	}

	token, err := s.signToken(user, TokenPurposeRecovery, s.cfg.VerificationExpiration)
	if err != nil {
		log.Errorf("sign recovery token for %s: %s", user.ID, err)
		return nil
	}
	link := s.link(token, TokenPurposeRecovery)
	if s.mailer == nil || !s.mailer.IsEnabled() {
		log.Infof("mail disabled, password reset link for %s: %s", user.Email, link)
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		log.Errorf("send password reset mail to %s: %s", user.Email, err)
	}
	return nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *authService) SignOut(_ context.Context, identity Identity) error {
	if identity.TokenID == "" {
		return ErrInvalidToken
	}
	s.blocklist.Revoke(identity.TokenID, identity.ExpiresAt)
	return nil
}

// Authenticate validates an access token and returns its identity.
func (s *authService) Authenticate(token string) (*Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != TokenPurposeAccess || claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if s.blocklist.IsRevoked(claims.ID) {
		return nil, ErrInvalidToken
	}
	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID  string `json:"uid"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *authService) signToken(user *domain.User, purpose string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "fittrack",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *authService) parse(tokenString string) (*jwtClaims, error) {
	claims := &jwtClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(s.now()) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) link(token, tokenType string) string {
	q := url.Values{}
	q.Set("token_hash", token)
	q.Set("type", tokenType)
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/auth/confirm?" + q.Encode()
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
