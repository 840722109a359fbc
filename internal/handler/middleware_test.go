package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/thanku/internal/domain"
	"github.com/msomdec/thanku/internal/handler"
	"github.com/msomdec/thanku/internal/repository/sqlite"
	"github.com/msomdec/thanku/internal/service"
)

const testSecret = "test-secret-for-handler-tests-0123456789"

func newTestServices(t *testing.T) (*service.AuthService, *service.CreditService) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := service.NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	auth := service.NewAuthService(db.Users(), tokens, service.NewPasswordHasher(4), 0)
	return auth, service.NewCreditService(db.Credits(), db.Users())
}

func createUser(t *testing.T, auth *service.AuthService, username, password string) *domain.User {
	t.Helper()
	user, err := auth.CreateUser(context.Background(), username, "Name "+username, "", password)
	if err != nil {
		t.Fatalf("CreateUser %s: %v", username, err)
	}
	return user
}

// principalRecorder is an inner handler that remembers the request principal.
type principalRecorder struct {
	user *domain.User
}

func (p *principalRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.user = handler.UserFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth_Password(t *testing.T) {
	auth, _ := newTestServices(t)
	alice := createUser(t, auth, "alice", "s3cret")

	inner := &principalRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth("alice", "s3cret")
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, nil, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if inner.user == nil || inner.user.ID != alice.ID {
		t.Fatalf("expected principal %d, got %+v", alice.ID, inner.user)
	}
}

func TestRequireAuth_TokenAsBasicUsername(t *testing.T) {
	auth, _ := newTestServices(t)
	alice := createUser(t, auth, "alice", "s3cret")
	token, err := auth.IssueToken(alice)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	inner := &principalRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth(token, "")
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, nil, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if inner.user == nil || inner.user.Username != "alice" {
		t.Fatalf("expected alice, got %+v", inner.user)
	}
}

func TestRequireAuth_BearerToken(t *testing.T) {
	auth, _ := newTestServices(t)
	alice := createUser(t, auth, "alice", "s3cret")
	token, err := auth.IssueToken(alice)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	inner := &principalRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, nil, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if inner.user == nil || inner.user.ID != alice.ID {
		t.Fatalf("expected principal %d, got %+v", alice.ID, inner.user)
	}
}

func TestRequireAuth_MissingCredentials(t *testing.T) {
	auth, _ := newTestServices(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, nil, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != `Basic realm="thanku"` {
		t.Fatalf("unexpected WWW-Authenticate %q", got)
	}
}

func TestRequireAuth_FailuresLookIdentical(t *testing.T) {
	auth, _ := newTestServices(t)
	createUser(t, auth, "alice", "s3cret")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	attempts := []struct {
		name     string
		user     string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "mallory", "s3cret"},
		{"garbage token", "invalid.jwt.token", ""},
	}

	var bodies []string
	for _, a := range attempts {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.SetBasicAuth(a.user, a.password)
		w := httptest.NewRecorder()

		handler.RequireAuth(auth, nil, inner).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", a.name, w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Fatalf("responses differ: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	auth, _ := newTestServices(t)
	alice := createUser(t, auth, "alice", "s3cret")
	token, err := auth.IssueToken(alice)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tampered := token[:len(token)-1] + "X"
	if tampered == token {
		tampered = token[:len(token)-1] + "Y"
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tampered)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, nil, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

type stubAuthenticator struct {
	err error
}

func (s stubAuthenticator) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, s.err
}

func TestRequireAuth_StoreErrorIs500(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth("alice", "s3cret")
	w := httptest.NewRecorder()

	handler.RequireAuth(stubAuthenticator{err: errors.New("db down")}, nil, inner).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestRequireAuth_ThrottlesRepeatedFailures(t *testing.T) {
	limiter := service.NewTokenBucket(0, 2)
	t.Cleanup(limiter.Close)
	auth := stubAuthenticator{err: domain.ErrUnauthorized}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.SetBasicAuth("alice", "guess")
		w := httptest.NewRecorder()
		handler.RequireAuth(auth, limiter, inner).ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("attempt %d: expected %d, got %d", i+1, want[i], codes[i])
		}
	}
}
