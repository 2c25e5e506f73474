package services

import (
	"context"
	"testing"

	"rutabus/internal/domain"
	"rutabus/internal/repositories/memrepo"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := AuthService{Users: memrepo.New(), JWTSecret: []byte("test-secret")}
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Maria Lopez", "maria@example.com", "secreta1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || token == "" {
		t.Fatalf("register must return user id and token")
	}

	logged, token, err := svc.Login(ctx, "maria@example.com", "secreta1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatalf("login returned wrong user or empty token")
	}

	if _, _, err := svc.Login(ctx, "maria@example.com", "otra"); !domain.IsUnauthenticated(err) {
		t.Fatalf("wrong password: got %v, want unauthenticated", err)
	}
	if _, _, err := svc.Login(ctx, "nadie@example.com", "secreta1"); !domain.IsUnauthenticated(err) {
		t.Fatalf("unknown email: got %v, want unauthenticated", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := AuthService{Users: memrepo.New(), JWTSecret: []byte("test-secret")}
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Maria Lopez", "maria@example.com", "secreta1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "Otra Persona", "maria@example.com", "secreta2"); !domain.IsConflict(err) {
		t.Fatalf("duplicate email: got %v, want conflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := AuthService{Users: memrepo.New(), JWTSecret: []byte("test-secret")}
	ctx := context.Background()

	cases := []struct {
		name, email, password string
	}{
		{"Jo", "maria@example.com", "secreta1"},
		{"Maria Lopez", "no-es-correo", "secreta1"},
		{"Maria Lopez", "maria@example.com", "123"},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(ctx, tc.name, tc.email, tc.password); !domain.IsValidation(err) {
			t.Errorf("Register(%q,%q,%q): got %v, want validation error", tc.name, tc.email, tc.password, err)
		}
	}
}
