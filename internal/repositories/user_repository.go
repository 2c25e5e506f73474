package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) Create(ctx context.Context, user models.User, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, is_admin)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, strings.ToLower(strings.TrimSpace(user.Email)), passwordHash, user.IsAdmin)
	if err != nil && strings.Contains(err.Error(), "Duplicate entry") {
		return domain.ConflictError{Resource: "usuario", Msg: "el correo ya está registrado", Err: err}
	}
	return err
}

func (r UserRepository) ByEmail(ctx context.Context, email string) (models.User, string, error) {
	var u models.User
	var hash string
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at
		FROM users
		WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Name, &u.Email, &hash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", domain.NotFoundError{Resource: "usuario", Err: err}
		}
		return models.User{}, "", err
	}
	return u, hash, nil
}

func (r UserRepository) ByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, is_admin, created_at
		FROM users
		WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "usuario", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}
