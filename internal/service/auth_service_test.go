package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

func TestRegisterCreatesUserRole(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret")

	u, err := svc.Register(context.Background(), "alice", "alice@corp.local", "secret123", "Sales")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Errorf("role = %q, want user", u.Role)
	}
	if u.Department != "Sales" {
		t.Errorf("department = %q, want Sales", u.Department)
	}
	if users.hashes[u.ID] == "" {
		t.Errorf("no password hash stored")
	}
	if users.hashes[u.ID] == "secret123" {
		t.Errorf("password stored unhashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")

	tests := []struct {
		name                      string
		username, email, password string
		wantField                 string
	}{
		{"missing username", "", "a@b.c", "secret123", "username"},
		{"missing email", "alice", "", "secret123", "email"},
		{"short password", "alice", "a@b.c", "abc", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want %q entry", verr.Fields, tt.wantField)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@corp.local", "secret123", "Sales"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tok, u, err := svc.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("user = %+v", u)
	}
	claims, err := utils.ParseJWT("test-secret", tok)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != models.RoleUser {
		t.Errorf("claims = %+v", claims)
	}

	if _, _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}
