package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "go-onboarding/internal/auth/errors"
	"go-onboarding/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultTokenTTL = 8 * time.Hour

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &service{repo: repo, secret: []byte(jwtSecret), tokenTTL: tokenTTL, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
		}
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", user.ID.String()))
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", AuthResponse{}, autherrors.ErrInactiveUser
	}

	token, err := s.generateToken(user)
	if err != nil {
		s.logger.Error("sign token failed", zap.Error(err))
		return "", AuthResponse{}, err
	}

	return token, toResponse(user), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp := toResponse(u)
	return &resp, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case domain.RoleViewer, domain.RoleHR, domain.RoleAdmin:
	default:
		return AuthResponse{}, autherrors.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	user := &User{
		ID:       uuid.New(),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Name:     req.Name,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		return AuthResponse{}, err
	}

	s.logger.Info("hr user registered", zap.String("user_id", user.ID.String()), zap.String("role", role))
	return toResponse(user), nil
}

func (s *service) generateToken(u *User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role,
		"name":    u.Name,
		"email":   u.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func toResponse(u *User) AuthResponse {
	return AuthResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
