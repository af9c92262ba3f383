package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wavvly/internal/models"
	"wavvly/internal/repositories"
	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	log        *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		log:        logger.Named("auth"),
	}
}

// RegisterUser registers a new user, hashes their password, saves them and
// returns a token for the new account.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) (string, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)
	user.FullName = strings.TrimSpace(SanitizeText(user.FullName))

	// Check if username or email already exists
	if err := s.ensureFree(ctx, s.userRepo.GetByEmail, user.Email, "User with this email already exists"); err != nil {
		return "", err
	}
	if err := s.ensureFree(ctx, s.userRepo.GetByUsername, user.Username, "Username already taken"); err != nil {
		return "", err
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Internal("failed to hash password", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	user.Followers, user.Following = []string{}, []string{}
	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))

	return s.IssueToken(user)
}

func (s *AuthService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value, message string) error {
	existing, err := lookup(ctx, value)
	if err == nil && existing != nil {
		return apperrors.Conflict(message)
	}
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return err
	}
	return nil
}

// LoginUser authenticates a user by email and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			// do not reveal whether the account exists
			return "", nil, apperrors.Unauthenticated("Invalid credentials")
		}
		return "", nil, err
	}

	// Compare the provided password with the hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthenticated("Invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      now.Unix(),                   // Issued at time
		"jti":      uuid.NewString(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Internal("failed to generate token", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindAuth, "Token is not valid", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if userID, _ := claims["user_id"].(string); userID == "" {
			return nil, apperrors.Unauthenticated("Token is not valid")
		}
		return claims, nil
	}
	return nil, apperrors.Unauthenticated("Token is not valid")
}

// CurrentUser returns the account behind a validated token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
