package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// Claims is the JWT payload the dev API issues, mirroring the backend's
// {sub, username, role} token.
type Claims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewUserInput carries everything needed to create a staff account.
type NewUserInput struct {
	Username       string
	Password       string
	Email          string
	FullName       string
	Role           domain.Role
	Phone          string
	Specialization string
}

// Service implements registration, login and profile lookup.
type Service struct {
	dir       Directory
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewService(dir Directory, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{dir: dir, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL, now: time.Now}
}

func (s *Service) Register(ctx context.Context, in NewUserInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.dir.Create(ctx, Account{
		User: domain.User{
			Username:       in.Username,
			Email:          in.Email,
			FullName:       in.FullName,
			Role:           in.Role,
			Phone:          in.Phone,
			IsActive:       true,
			CreatedAt:      s.now().UTC(),
			Specialization: in.Specialization,
		},
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	return &created.User, nil
}

// Login checks the password and returns a signed token. An unknown user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	acc, err := s.dir.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !acc.User.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.generateToken(&acc.User)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	acc.User.LastLogin = &now
	return &domain.AuthResult{AccessToken: token, TokenType: "bearer", User: &acc.User}, nil
}

// Profile returns the user a verified token's subject refers to.
func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	acc, err := s.dir.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &acc.User, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.dir.List(ctx)
}

// ParseToken verifies an HS256 token issued by this service.
func (s *Service) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return claims, nil
}

// UserID extracts the numeric subject from verified claims.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func (s *Service) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}
