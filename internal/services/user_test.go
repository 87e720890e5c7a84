package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidstream/vidstream/internal/models"
)

func newUserService() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewUserService(users, time.Second, testLogger()), users
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, &RegisterRequest{
		Username: "Alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username not lowercased: %q", user.Username)
	}
	if user.Password == "correct-horse" {
		t.Error("password stored in the clear")
	}

	logged, err := service.Login(ctx, &LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID {
		t.Error("login resolved a different user")
	}

	_, err = service.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("bad password: got %v, want ErrUnauthorized", err)
	}

	_, err = service.Login(ctx, &LoginRequest{Username: "nobody", Password: "whatever"})
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("unknown user: got %v, want ErrUnauthorized", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	first := &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "correct-horse"}
	if _, err := service.Register(ctx, first); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := service.Register(ctx, &RegisterRequest{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate username: got %v, want ErrConflict", err)
	}

	_, err = service.Register(ctx, &RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "correct-horse"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate email: got %v, want ErrConflict", err)
	}
}

func TestUpdateProfileFields(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
		FullName: "Alice A",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := service.Update(ctx, user.ID.String(), &UpdateUserRequest{Avatar: "https://cdn.example.com/a.png"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Avatar == "" {
		t.Error("avatar not applied")
	}
	if updated.FullName != "Alice A" {
		t.Errorf("empty request field overwrote full name: %q", updated.FullName)
	}
}
