package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"socioBack/internal/models"
	"socioBack/internal/repositories"
	"socioBack/utils"
)

const (
	accessTokenTTL  = 2 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
	SigningKey   string
	Audit        *AuditService
	Now          Clock
}

func validRole(role string) bool {
	switch role {
	case models.RoleSuperadmin, models.RoleAdmin, models.RoleReceptionist:
		return true
	}
	return false
}

func (s *UserService) CreateUser(ctx context.Context, u models.User, password string) (models.User, error) {
	if u.Username == "" {
		return models.User{}, models.NewValidation("el nombre de usuario es obligatorio")
	}
	if len(password) < 8 {
		return models.User{}, models.NewValidation("la contraseña debe tener al menos 8 caracteres")
	}
	if !validRole(u.Role) {
		return models.User{}, models.NewValidation("rol inválido: %s", u.Role)
	}
	exists, err := s.UserRepo.ExistsByUsername(ctx, u.Username, 0)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, models.NewConflict("Ya existe un usuario con ese nombre")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u.Password = string(hashed)
	id, err := s.UserRepo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.Audit.Record(ctx, "create", "user", id, u.Username)
	return s.UserRepo.GetUserByID(ctx, id)
}

// SignIn checks credentials and issues an access token plus a DB-backed
// refresh session.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.SignInResponse, error) {
	user, err := s.UserRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.SignInResponse{}, models.NewValidation("usuario o contraseña inválidos")
		}
		return models.SignInResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.SignInResponse{}, models.NewValidation("usuario o contraseña inválidos")
	}

	now := nowOr(s.Now)
	claims := &models.Claims{
		UserID: uint(user.ID),
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(accessTokenTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.SigningKey))
	if err != nil {
		return models.SignInResponse{}, err
	}
	refresh, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.SignInResponse{}, err
	}
	if err := s.UserRepo.DeleteSessionsForUser(ctx, user.ID); err != nil {
		return models.SignInResponse{}, err
	}
	err = s.UserRepo.CreateSession(ctx, models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(refreshTokenTTL),
	})
	if err != nil {
		return models.SignInResponse{}, err
	}
	return models.SignInResponse{
		User:   user,
		Tokens: models.Tokens{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Refresh exchanges a stored refresh token for a fresh token pair. The old
// session is replaced so a refresh token can only be used once.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	if refreshToken == "" {
		return models.Tokens{}, models.NewValidation("el refresh token es obligatorio")
	}
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	now := nowOr(s.Now)
	if session.UserID == 0 || session.ExpiresAt.Before(now) {
		return models.Tokens{}, models.NewValidation("la sesión ha expirado, inicie sesión de nuevo")
	}
	claims := &models.Claims{
		UserID: uint(session.UserID),
		Role:   session.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(accessTokenTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.SigningKey))
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	if err := s.UserRepo.DeleteSessionsForUser(ctx, session.UserID); err != nil {
		return models.Tokens{}, err
	}
	err = s.UserRepo.CreateSession(ctx, models.Session{
		UserID:       session.UserID,
		Role:         session.Role,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(refreshTokenTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (models.User, error) {
	u, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.User{}, models.NewNotFound("usuario %d no encontrado", id)
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.UserRepo.ListUsers(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	if !validRole(u.Role) {
		return models.User{}, models.NewValidation("rol inválido: %s", u.Role)
	}
	if err := s.UserRepo.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.User{}, models.NewNotFound("usuario %d no encontrado", u.ID)
		}
		return models.User{}, err
	}
	s.Audit.Record(ctx, "update", "user", u.ID, u.Username)
	return s.UserRepo.GetUserByID(ctx, u.ID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.NewNotFound("usuario %d no encontrado", userID)
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return models.NewValidation("la contraseña actual no es correcta")
	}
	if len(newPassword) < 8 {
		return models.NewValidation("la contraseña debe tener al menos 8 caracteres")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *UserService) DeleteUser(ctx context.Context, id int) (bool, error) {
	deleted, err := s.UserRepo.SoftDeleteUser(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		if err := s.UserRepo.DeleteSessionsForUser(ctx, id); err != nil {
			return true, err
		}
		s.Audit.Record(ctx, "delete", "user", id, "")
	}
	return deleted, nil
}
