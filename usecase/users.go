package usecase

import (
	"context"
	"strings"
	"time"

	"safeher/apperrors"
	"safeher/model"
	"safeher/scheduler"
	"safeher/services"
	"safeher/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	GenerateJWT(userID string) (string, time.Time, error)
}

type UserService struct {
	Users     UserStore
	Tokens    TokenIssuer
	Blacklist services.TokenBlacklist
	Clock     scheduler.Clock
	lg        *zap.Logger
}

func NewUserService(users UserStore, tokens TokenIssuer, blacklist services.TokenBlacklist, clock scheduler.Clock, lg *zap.Logger) *UserService {
	if clock == nil {
		clock = scheduler.NewRealClock()
	}
	if blacklist == nil {
		blacklist = services.NoopBlacklist{}
	}
	return &UserService{Users: users, Tokens: tokens, Blacklist: blacklist, Clock: clock, lg: lg}
}

type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 100 {
		return nil, apperrors.Validation("name must be between 2 and 100 characters")
	}
	phone := services.DigitsOnly(req.Phone)
	if len(phone) < 10 {
		return nil, apperrors.Validation("invalid phone number")
	}

	existing, err := s.Users.FindByEmailOrPhone(ctx, req.Email, phone)
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		utils.TrackAuthAttempt("failure", "register")
		return nil, apperrors.Conflict("user with this email or phone already exists")
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	now := s.Clock.Now()
	user := &model.User{
		UserID:    uuid.NewString(),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     phone,
		Password:  hash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, exp, err := s.Tokens.GenerateJWT(user.UserID)
	if err != nil {
		return nil, err
	}

	utils.TrackAuthAttempt("success", "register")
	utils.TrackRegistration()
	s.lg.Info("User registered", zap.String("user_id", user.UserID))
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*AuthResult, error) {
	user, err := s.Users.FindByEmail(ctx, req.Email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		utils.TrackAuthAttempt("failure", "login")
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if !services.ComparePasswords(user.Password, req.Password) {
		utils.TrackAuthAttempt("failure", "login")
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		utils.TrackAuthAttempt("failure", "login")
		return nil, apperrors.Unauthorized("account is deactivated")
	}

	now := s.Clock.Now()
	if err := s.Users.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		s.lg.Warn("Failed to record last login", zap.String("user_id", user.UserID), zap.Error(err))
	}
	user.LastLogin = now

	token, exp, err := s.Tokens.GenerateJWT(user.UserID)
	if err != nil {
		return nil, err
	}

	utils.TrackAuthAttempt("success", "login")
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.Users.FindByID(ctx, userID)
}

// Logout blacklists the token until its own expiry.
func (s *UserService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	return s.Blacklist.Blacklist(ctx, token, expiresAt)
}
