package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/security/auth"
	"github.com/yourorg/rentease/internal/service"
)

type fakeUserRepo struct {
	seq   int64
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.seq++
	u.ID = f.seq
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.NotFound("user %d not found", id)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if u, ok := f.users[id]; ok {
		u.IsActive = false
		return nil
	}
	return domain.NotFound("user %d not found", id)
}

func (f *fakeUserRepo) List(_ context.Context, _ domain.Role) ([]*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ListTenantsForOwner(_ context.Context, _ int64) ([]*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) SetProfilePicture(_ context.Context, userID int64, fileID *int64) error {
	if u, ok := f.users[userID]; ok {
		u.ProfilePictureID = fileID
		return nil
	}
	return domain.NotFound("user %d not found", userID)
}

func newAuthHandler() *AuthHandler {
	tokens := auth.NewTokenManager("test-secret", "rentease")
	svc := service.NewAuthService(newFakeUserRepo(), tokens, nil)
	return NewAuthHandler(svc, nil)
}

func TestRegisterEndpoint(t *testing.T) {
	h := newAuthHandler()

	body := `{"first_name":"Alice","last_name":"Smith","username":"alice","email":"alice@example.com","password":"Password123","role":"owner"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.ID == 0 || resp.Role != "owner" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password material leaked in response: %s", rec.Body.String())
	}

	// Duplicate registration conflicts
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	h := newAuthHandler()

	register := `{"username":"bob","email":"bob@example.com","password":"Password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(register))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"bob@example.com","password":"Password123"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	if resp.User.Email != "bob@example.com" {
		t.Fatalf("unexpected user in response: %+v", resp.User)
	}

	// Wrong password
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"bob@example.com","password":"nope"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.Validation("bad input"), http.StatusBadRequest},
		{domain.Unauthorized("no token"), http.StatusUnauthorized},
		{domain.Forbidden("nope"), http.StatusForbidden},
		{domain.NotFound("missing"), http.StatusNotFound},
		{domain.AlreadyExists("dup"), http.StatusConflict},
		{domain.BusinessRuleViolation("overlap"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, nil, tc.err)
		if rec.Code != tc.want {
			t.Errorf("writeError(%v) = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}
