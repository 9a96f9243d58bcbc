package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"contentboard/internal/actor"
	"contentboard/internal/apperror"
	"contentboard/internal/config"
	"contentboard/internal/logger"
	"contentboard/internal/models"
	"contentboard/internal/repository"
)

type RegisterInput struct {
	Email    string
	Password string
}

// Session is what a successful login or refresh hands back to the client.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, userID string) error
	ParseAccessToken(tokenString string) (actor.Actor, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	cfg       *config.Config
	log       *logger.Logger
	now       func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.RefreshTokenRepository, cfg *config.Config, log *logger.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Register creates a user with the "user" role. The address configured as
// ADMIN_EMAIL is registered as admin.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	existingUser, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err == nil && existingUser != nil {
		return nil, apperror.Conflict(nil, "user with email %s already exists", in.Email)
	}
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	role := actor.RoleUser
	if s.cfg.AdminEmail != "" && strings.EqualFold(in.Email, s.cfg.AdminEmail) {
		role = actor.RoleAdmin
	}

	user := &models.User{
		Email: in.Email,
		Role:  role,
	}

	if err := s.userRepo.CreateUser(ctx, user, in.Password); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.UserID, "role", user.Role)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	return s.issue(ctx, user)
}

// RefreshTokens exchanges a live refresh token for a new pair. The presented
// token is superseded by the new one.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*Session, error) {
	user, err := s.tokenRepo.GetUserByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, user)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	return s.tokenRepo.DeleteByUserID(ctx, userID)
}

func (s *authService) issue(ctx context.Context, user *models.User) (*Session, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	if _, err := s.tokenRepo.Rotate(ctx, user.UserID, refreshToken, s.now().Add(s.cfg.RefreshTokenDuration)); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Session{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"userId": user.UserID,
		"email":  user.Email,
		"role":   user.Role,
		"exp":    now.Add(s.cfg.AccessTokenDuration).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken verifies signature and expiry and returns the caller the
// token was issued to.
func (s *authService) ParseAccessToken(tokenString string) (actor.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return actor.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return actor.Actor{}, fmt.Errorf("invalid token claims")
	}

	userID, ok1 := claims["userId"].(string)
	email, ok2 := claims["email"].(string)
	role, ok3 := claims["role"].(string)
	if !ok1 || !ok2 || !ok3 {
		return actor.Actor{}, fmt.Errorf("token is missing user claims")
	}

	return actor.Actor{UserID: userID, Email: email, Role: role}, nil
}
