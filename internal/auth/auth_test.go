package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("secret", "")

	result, err := svc.IssueToken("Ada", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.User.ID, "user_"))

	user, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User, *user)
}

func TestAccessKey(t *testing.T) {
	hash, err := HashAccessKey("open sesame")
	require.NoError(t, err)
	svc := NewService("secret", hash)

	_, err = svc.IssueToken("Ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = svc.IssueToken("Ada", "open sesame")
	assert.NoError(t, err)
}

func TestValidateRejects(t *testing.T) {
	svc := NewService("secret", "")
	other := NewService("other", "")
	foreign, err := other.IssueToken("Eve", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user_x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", foreign.Token},
		{"unsigned", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	svc := NewService("secret", "")
	result, err := svc.IssueToken("Ada", "")
	require.NoError(t, err)

	var seen *User
	h := svc.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer " + result.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, "Ada", seen.DisplayName)
}

func TestTokenHandler(t *testing.T) {
	h := NewHandler(NewService("secret", ""))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"displayName":"Ada"}`, http.StatusCreated},
		{"blank name", `{"displayName":"  "}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Token(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
