package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdcommons/service/internal/auth"
	"github.com/pdcommons/service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var testSecret = []byte("auth-test-secret")

type stubUserRepo struct {
	upserted []uuid.UUID
}

func (r *stubUserRepo) Upsert(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.upserted = append(r.upserted, id)
	return domain.User{ID: id}, nil
}

func signToken(t *testing.T, subject string, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func authHarness(users *stubUserRepo) (http.Handler, *uuid.UUID) {
	var seen uuid.UUID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := auth.UserIDFromContext(r.Context()); ok {
			seen = id
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(testSecret, users, zap.NewNop())(inner), &seen
}

func TestAuthAcceptsValidToken(t *testing.T) {
	users := &stubUserRepo{}
	handler, seen := authHarness(users)
	userID := uuid.New()

	r := httptest.NewRequest(http.MethodGet, "/bulkUploads", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, userID.String(), testSecret))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if *seen != userID {
		t.Fatal("expected the user id to be injected into the request context")
	}
	if len(users.upserted) != 1 || users.upserted[0] != userID {
		t.Fatal("expected the user record to be upserted")
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _ := authHarness(&stubUserRepo{})
			r := httptest.NewRequest(http.MethodGet, "/bulkUploads", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAuthRejectsWrongSigningKey(t *testing.T) {
	handler, _ := authHarness(&stubUserRepo{})

	r := httptest.NewRequest(http.MethodGet, "/bulkUploads", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New().String(), []byte("some other key")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsNonUUIDSubject(t *testing.T) {
	handler, _ := authHarness(&stubUserRepo{})

	r := httptest.NewRequest(http.MethodGet, "/bulkUploads", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "not-a-uuid", testSecret))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	handler, _ := authHarness(&stubUserRepo{})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/bulkUploads", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
