package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/youknowom/campus-connect/internal/domain"
)

type contextKey string

const key = contextKey("identity")

// Identity - подтвержденная личность запроса, полученная от внешнего
// провайдера аутентификации. UserID стабилен между запросами; остальные
// поля - снимок профиля и могут отсутствовать.
type Identity struct {
	UserID    string
	Name      string
	Email     string
	AvatarURL string
}

// User превращает снимок профиля в доменную запись пользователя,
// подставляя заглушки вместо отсутствующих полей.
func (id *Identity) User() *domain.User {
	name := id.Name
	if name == "" {
		name = "Anonymous"
	}
	email := id.Email
	if email == "" {
		email = fmt.Sprintf("%s@example.com", id.UserID)
	}
	user := &domain.User{
		ID:    id.UserID,
		Name:  name,
		Email: email,
	}
	if id.AvatarURL != "" {
		avatar := id.AvatarURL
		user.AvatarURL = &avatar
	}
	return user
}

// Resolver определяет контракт распознавания личности по запросу.
// (nil, nil) означает анонимный запрос - это не ошибка.
type Resolver interface {
	Resolve(r *http.Request) (*Identity, error)
}

// HeaderResolver доверяет заголовкам, проставленным аутентифицирующим
// прокси перед сервисом. Сам сервис учетные данные не проверяет - это
// зона ответственности внешнего провайдера.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (*Identity, error) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		return nil, nil
	}
	return &Identity{
		UserID:    userID,
		Name:      r.Header.Get("X-User-Name"),
		Email:     r.Header.Get("X-User-Email"),
		AvatarURL: r.Header.Get("X-User-Avatar"),
	}, nil
}

// Middleware распознает личность один раз на запрос и кладет ее в контекст.
// Анонимные запросы проходят дальше: решение "нужна ли авторизация"
// принимает RequireUser на конкретных маршрутах.
func Middleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			if identity != nil {
				r = r.WithContext(context.WithValue(r.Context(), key, identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser отклоняет анонимные запросы со статусом 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if From(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// From извлекает личность из контекста; nil для анонимного запроса.
func From(ctx context.Context) *Identity {
	identity, _ := ctx.Value(key).(*Identity)
	return identity
}
