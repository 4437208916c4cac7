package auth

import (
	"context"
	"testing"
	"time"

	"github.com/listmasterapp/listmaster/internal/models"
	"github.com/listmasterapp/listmaster/internal/storage"
)

// fakeUserStorage is an in-memory UserStorage for authenticator tests.
type fakeUserStorage struct {
	byEmail map[string]*models.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return storage.ErrEmailTaken
	}
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newFakeUserStorage())

	user, err := a.Register(ctx, "a@example.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password must not be stored in plaintext")
	}

	got, err := a.Authenticate(ctx, "a@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user ID mismatch: got %s, want %s", got.ID, user.ID)
	}

	if _, err := a.Authenticate(ctx, "a@example.com", "wrong password"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct horse"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	a := NewPasswordAuthenticator(newFakeUserStorage())
	if _, err := a.Register(context.Background(), "a@example.com", "Alice", "short"); err != ErrWeakPassword {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newFakeUserStorage())

	if _, err := a.Register(ctx, "a@example.com", "Alice", "correct horse"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "a@example.com", "Imposter", "battery staple"); err != ErrEmailExists {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!", time.Hour)
	user := models.NewUser("a@example.com", "Alice", "hash")

	token, expiresAt, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID mismatch: got %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email mismatch: got %s, want %s", claims.Email, user.Email)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!", -time.Minute)
	token, _, err := m.Generate(models.NewUser("a@example.com", "Alice", "hash"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); err == nil {
		t.Error("expected validation error for expired token")
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one", time.Hour)
	m2 := NewJWTManager("secret-two", time.Hour)
	token, _, err := m1.Generate(models.NewUser("a@example.com", "Alice", "hash"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m2.Validate(token); err == nil {
		t.Error("expected validation error for token signed with a different secret")
	}
}
