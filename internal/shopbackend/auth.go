package shopbackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// EnsureUser creates or updates a user with the given credentials.
// Used to seed dev users and by tests; there is no self-registration
// surface, identity provisioning is out of scope.
func EnsureUser(ctx context.Context, db *gorm.DB, username, password, role string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	var user User
	err = db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = User{
			ID:           "usr_" + uuid.NewString(),
			Username:     username,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		user.PasswordHash = string(hash)
		user.Role = role
		if err := db.WithContext(ctx).Save(&user).Error; err != nil {
			return "", err
		}
	}
	return user.ID, nil
}

// IssueToken signs a bearer token carrying the user id and role.
func IssueToken(user *User, secret []byte) (string, error) {
	claims := authClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func callerFromToken(tokenStr string, secret []byte) (Caller, error) {
	var claims authClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return Caller{}, ErrUnauthorized
	}
	return Caller{UserID: claims.Subject, Role: claims.Role}, nil
}

const callerContextKey = "shopbackend.caller"

// BearerAuth resolves the Authorization header into a Caller. No
// header means an anonymous guest; a malformed or forged token is
// rejected outright.
func BearerAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				c.Set(callerContextKey, Caller{})
				return next(c)
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			caller, err := callerFromToken(tokenStr, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(callerContextKey, caller)
			return next(c)
		}
	}
}

func callerFrom(c echo.Context) Caller {
	if v, ok := c.Get(callerContextKey).(Caller); ok {
		return v
	}
	return Caller{}
}

// Login verifies credentials and returns a bearer token.
func (s *Service) Login(ctx context.Context, secret []byte, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password required", ErrValidation)
	}
	user, err := s.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}
	return IssueToken(user, secret)
}
