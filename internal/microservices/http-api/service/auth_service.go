package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cinerate/internal/config"
	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/repository"
	"cinerate/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the subject asserted by a session token.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Claims are the JWT claims of a session token. Subject carries the user id
// in decimal form.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	IssueToken(id Identity) (string, error)
	VerifyToken(tokenString string) (*Identity, error)
}

type authService struct {
	store      repository.Store
	ids        *IDAllocator
	jwtSecret  []byte
	issuer     string
	tokenTTL   time.Duration
	bcryptCost int
	dummyHash  string
	logger     *slog.Logger
	now        func() time.Time
}

func NewAuthService(store repository.Store, ids *IDAllocator, cfg *config.Config, logger *slog.Logger) AuthService {
	s := &authService{
		store:      store,
		ids:        ids,
		jwtSecret:  []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		tokenTTL:   cfg.JWTExpiry,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
	// Unknown emails are checked against this hash so both failure paths
	// cost one bcrypt compare at the configured cost.
	dummy, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		logger.Warn("could not prepare dummy password hash", slog.String("error", err.Error()))
	}
	s.dummyHash = dummy
	return s
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a freshly allocated id.
func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if username == "" {
		return nil, invalid("username", "Username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("email", "A valid email is required")
	}
	if password == "" {
		return nil, invalid("password", "Password is required")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, invalid("password", "Password must be at most 72 bytes")
	}
	if err != nil {
		return nil, unavailable("hash password", err)
	}

	var user *models.User
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		// Early exit only; the unique index on email is what closes the race.
		if _, err := tx.Users().FindByEmail(ctx, email); err == nil {
			return ErrEmailInUse
		} else if !errors.Is(err, repository.ErrNotFound) {
			return unavailable("lookup email", err)
		}

		id, err := s.ids.NextID(ctx, tx.Counters(), KindUser)
		if err != nil {
			return err
		}

		candidate := &models.User{
			UserID:       id,
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    s.now().UTC(),
		}
		if err := tx.Users().Create(ctx, candidate); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailInUse
			}
			return unavailable("create user", err)
		}
		user = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return nil, ErrEmailInUse
		}
		return nil, unavailable("register", err)
	}

	s.logger.Info("user registered", slog.Int64("user_id", user.UserID))
	return user, nil
}

// Authenticate never tells an unknown email apart from a wrong password.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	user, err := s.store.Users().FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.VerifyPassword(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, unavailable("lookup email", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{UserID: user.UserID, Username: user.Username}, nil
}

// IssueToken signs an HS256 token valid for the configured expiry window.
func (s *authService) IssueToken(id Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) VerifyToken(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// Subject and the userId claim must agree
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
