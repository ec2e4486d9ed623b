package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"year-journal/internal/db"
)

func newAuth(t *testing.T) *Auth {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return New(database, "test-secret")
}

func TestJWTRoundTrip(t *testing.T) {
	a := newAuth(t)

	token, err := a.GenerateJWT()
	require.NoError(t, err)

	claims, err := a.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "writer", claims.Role)
	assert.Equal(t, "year-journal", claims.Issuer)
}

func TestLoginLinkIsSingleUse(t *testing.T) {
	a := newAuth(t)

	link, err := a.GenerateLoginLink("http://localhost:8080")
	require.NoError(t, err)

	idx := strings.Index(link, "token=")
	require.Greater(t, idx, 0)
	token := link[idx+len("token="):]

	jwtStr, err := a.ValidateLoginToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, jwtStr)

	_, err = a.ValidateLoginToken(token)
	assert.ErrorIs(t, err, ErrTokenUsed)

	_, err = a.ValidateLoginToken("deadbeef")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareTagsWriter(t *testing.T) {
	a := newAuth(t)

	token, err := a.GenerateJWT()
	require.NoError(t, err)

	var role string
	handler := a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		role = r.Header.Get("X-User-Role")
	}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/entries?year=2024", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	handler(httptest.NewRecorder(), req)
	assert.Equal(t, "writer", role)

	// Anonymous requests pass through untagged when auth is optional.
	role = ""
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/entries?year=2024", nil))
	assert.Equal(t, "", role)
	assert.False(t, IsWriter(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestMiddlewareRequiredAuthRejectsAnonymous(t *testing.T) {
	a := newAuth(t)

	called := false
	handler := a.Middleware(func(w http.ResponseWriter, r *http.Request) { called = true }, true)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}
