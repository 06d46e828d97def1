package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

// AdminCredentials are the single set of admin dashboard credentials.
type AdminCredentials struct {
	Email    string
	Password string
}

// AuthService handles business logic for authentication and authorization.
// User and admin tokens are signed with the same secret but carry distinct
// claims, and each validator rejects the other kind.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	admin      AdminCredentials
	validate   *validator.Validate
	log        *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, admin AdminCredentials, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 7 * 24 * time.Hour,
		admin:      admin,
		validate:   validator.New(),
		log:        log,
	}
}

// RegisterUser registers a new user, hashes their password and returns a user token.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (string, error) {
	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	if err := s.validate.Struct(user); err != nil {
		return "", apperror.InvalidInput(err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return "", apperror.Conflict("User already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", apperror.Internal("Failed to register user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Internal("Failed to hash password", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return "", apperror.Conflict("User already exists")
		}
		return "", apperror.Internal("Failed to register user", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.sign(jwt.MapClaims{"id": user.ID})
}

// LoginUser authenticates a user and returns a user token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperror.Unauthenticated("Invalid credentials")
		}
		return "", apperror.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperror.Unauthenticated("Invalid credentials")
	}

	return s.sign(jwt.MapClaims{"id": user.ID})
}

// LoginAdmin checks the admin credentials and returns an admin token.
func (s *AuthService) LoginAdmin(email, password string) (string, error) {
	if email != s.admin.Email || password != s.admin.Password {
		return "", apperror.Unauthenticated("Invalid credentials")
	}
	return s.sign(jwt.MapClaims{"role": adminRole, "email": email})
}

// ValidateUserToken returns the user id carried by a user token.
func (s *AuthService) ValidateUserToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if role, _ := claims["role"].(string); role != "" {
		return "", apperror.Unauthenticated("Not Authorized Login Again")
	}
	userID, _ := claims["id"].(string)
	if userID == "" {
		return "", apperror.Unauthenticated("Not Authorized Login Again")
	}
	return userID, nil
}

// ValidateAdminToken accepts only tokens issued by LoginAdmin.
func (s *AuthService) ValidateAdminToken(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	if role != adminRole || email != s.admin.Email {
		return apperror.Unauthenticated("Not Authorized Login Again")
	}
	return nil
}

func (s *AuthService) sign(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.tokenDurat).Unix()

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.Internal("Failed to generate token", err)
	}
	return tokenString, nil
}

// parse validates signature and expiry and returns the token claims.
func (s *AuthService) parse(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, apperror.Unauthenticated("Not Authorized Login Again")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperror.Unauthenticated("Session expired, login again")
		}
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, apperror.Unauthenticated("Not Authorized Login Again")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthenticated("Not Authorized Login Again")
	}
	return claims, nil
}
