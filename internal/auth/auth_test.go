package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	// Без заголовков запрос анонимный, но это не ошибка.
	identity, err := HeaderResolver{}.Resolve(req)
	require.NoError(t, err)
	assert.Nil(t, identity)

	req.Header.Set("X-User-Id", "user-42")
	req.Header.Set("X-User-Name", "Alice")
	req.Header.Set("X-User-Email", "alice@example.com")
	req.Header.Set("X-User-Avatar", "https://cdn.example.com/a.png")

	identity, err = HeaderResolver{}.Resolve(req)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "user-42", identity.UserID)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "https://cdn.example.com/a.png", identity.AvatarURL)
}

func TestIdentity_User_Placeholders(t *testing.T) {
	// Отсутствующие поля профиля заменяются заглушками.
	user := (&Identity{UserID: "user-42"}).User()
	assert.Equal(t, "user-42", user.ID)
	assert.Equal(t, "Anonymous", user.Name)
	assert.Equal(t, "user-42@example.com", user.Email)
	assert.Nil(t, user.AvatarURL)

	user = (&Identity{UserID: "u", Name: "Bob", Email: "b@e.com", AvatarURL: "pic"}).User()
	assert.Equal(t, "Bob", user.Name)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "pic", *user.AvatarURL)
}

func TestMiddlewareAndFrom(t *testing.T) {
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = From(r.Context())
	})

	handler := Middleware(HeaderResolver{})(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "user-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "user-7", seen.UserID)

	seen = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, seen)
}

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Middleware(HeaderResolver{})(RequireUser(next))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-User-Id", "user-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
