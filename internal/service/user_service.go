package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/logging"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserInput struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserInput struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     string `json:"role"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService interface {
	Login(ctx context.Context, input LoginInput) (*model.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.User, TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error

	Create(ctx context.Context, actor workflow.Actor, input CreateUserInput) (*model.User, error)
	Update(ctx context.Context, actor workflow.Actor, id string, input UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor workflow.Actor, id string) error
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
}

type userService struct {
	users     repository.UserRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
}

func NewUserService(
	users repository.UserRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
) UserService {
	return &userService{users: users, audits: audits, txManager: txManager}
}

var userLog = logging.ForModule("users")

func (s *userService) Login(ctx context.Context, input LoginInput) (*model.User, TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: invalid credentials", workflow.ErrPermissionDenied)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: invalid credentials", workflow.ErrPermissionDenied)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	userLog.WithField("username", user.Username).Info("user logged in")
	return user, pair, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*model.User, TokenPair, error) {
	stored, err := s.users.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: refresh token not recognized", workflow.ErrPermissionDenied)
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.users.DeleteRefreshToken(ctx, refreshToken)
		return nil, TokenPair{}, fmt.Errorf("%w: refresh token expired", workflow.ErrPermissionDenied)
	}

	// Rotate: the presented token dies, a fresh pair replaces it.
	if err := s.users.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, TokenPair{}, err
	}
	user := stored.User
	pair, err := s.issueTokens(ctx, &user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &user, pair, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.users.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (TokenPair, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	if err != nil {
		return TokenPair{}, err
	}

	refresh := uuid.NewString()
	err = s.users.StoreRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) Create(ctx context.Context, actor workflow.Actor, input CreateUserInput) (*model.User, error) {
	if _, ok := workflow.ParseRole(input.Role); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", workflow.ErrValidationFailed, input.Role)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     input.Role,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.users.Create(txCtx, user); createErr != nil {
			return createErr
		}
		return s.logUserAudit(txCtx, actor, model.ActionCreateUser, user)
	})
	if err != nil {
		return nil, err
	}
	userLog.WithField("username", user.Username).WithField("role", user.Role).Info("user created")
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor workflow.Actor, id string, input UpdateUserInput) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", workflow.ErrNotFound)
	}
	if input.Role != "" {
		if _, ok := workflow.ParseRole(input.Role); !ok {
			return nil, fmt.Errorf("%w: unknown role %q", workflow.ErrValidationFailed, input.Role)
		}
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		user, findErr = s.users.GetByID(txCtx, userID)
		if findErr != nil {
			return findErr
		}
		if input.Email != "" {
			user.Email = input.Email
		}
		if input.Phone != "" {
			user.Phone = input.Phone
		}
		if input.Role != "" {
			user.Role = input.Role
		}
		if input.Password != "" {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				return hashErr
			}
			user.Password = string(hashed)
			// Changed password invalidates every outstanding session.
			if delErr := s.users.DeleteUserRefreshTokens(txCtx, user.ID); delErr != nil {
				return delErr
			}
		}
		if updErr := s.users.Update(txCtx, user); updErr != nil {
			return updErr
		}
		return s.logUserAudit(txCtx, actor, model.ActionUpdateUser, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor workflow.Actor, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", workflow.ErrNotFound)
	}
	if userID == actor.ID {
		return fmt.Errorf("%w: cannot delete your own account", workflow.ErrValidationFailed)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, findErr := s.users.GetByID(txCtx, userID)
		if findErr != nil {
			return findErr
		}
		if delErr := s.users.DeleteUserRefreshTokens(txCtx, user.ID); delErr != nil {
			return delErr
		}
		if delErr := s.users.Delete(txCtx, user.ID); delErr != nil {
			return delErr
		}
		return s.logUserAudit(txCtx, actor, model.ActionDeleteUser, user)
	})
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", workflow.ErrNotFound)
	}
	return s.users.GetByID(ctx, userID)
}

func (s *userService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	return s.users.List(ctx, page, limit)
}

func (s *userService) logUserAudit(ctx context.Context, actor workflow.Actor, action string, subject *model.User) error {
	payload, _ := json.Marshal(map[string]interface{}{"role": subject.Role})
	uid := actor.ID
	return s.audits.Log(ctx, &model.AuditLog{
		UserID:     &uid,
		Action:     action,
		EntityID:   subject.ID.String(),
		EntityName: subject.Username,
		Details:    string(payload),
	})
}
