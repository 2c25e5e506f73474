package services

import (
	"context"
	"time"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories"
	"rutabus/internal/validate"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users     repositories.UserStore
	JWTSecret []byte
	TokenTTL  time.Duration
}

func (s AuthService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return 24 * time.Hour
}

// Register creates the account and returns the user with a session token.
func (s AuthService) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	if err := validate.Name(name); err != nil {
		return models.User{}, "", err
	}
	if err := validate.Email(email); err != nil {
		return models.User{}, "", err
	}
	if err := validate.Password(password); err != nil {
		return models.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "no se pudo procesar la contraseña", Err: err}
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.Users.Create(ctx, user, string(hash)); err != nil {
		return models.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, hash, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, "", domain.UnauthenticatedError{Msg: "correo o contraseña incorrectos"}
		}
		return models.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, "", domain.UnauthenticatedError{Msg: "correo o contraseña incorrectos"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// CurrentUser resolves the session user from a verified token subject.
func (s AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, domain.UnauthenticatedError{Msg: "sesión inválida", Err: err}
		}
		return models.User{}, err
	}
	return user, nil
}

func (s AuthService) issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(s.tokenTTL()).Unix(),
	})
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", domain.InternalError{Msg: "no se pudo crear el token", Err: err}
	}
	return signed, nil
}
