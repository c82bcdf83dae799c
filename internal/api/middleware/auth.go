package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Заголовки, которые проставляет gateway после аутентификации
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
	HeaderUserPhone = "X-User-Phone"
)

const msgUnauthorized = "отсутствует или некорректен ID пользователя"

type contextKey string

const identityKey contextKey = "identity"

// Auth требует X-User-ID и кладет identity в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromHeaders(r)
		if !ok {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// OptionalAuth кладет identity в контекст, если заголовки переданы
// Некорректный X-User-ID отклоняется так же, как в Auth
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUserID) == "" {
			next.ServeHTTP(w, r)
			return
		}
		identity, ok := identityFromHeaders(r)
		if !ok {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// WithIdentity кладет identity в контекст (используется и в тестах handlers)
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity возвращает identity из контекста
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}

func identityFromHeaders(r *http.Request) (domain.Identity, bool) {
	userID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, false
	}

	role := domain.Role(strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
	switch role {
	case domain.RoleCustomer, domain.RoleVendor, domain.RoleAdmin:
	case "":
		role = domain.RoleCustomer
	default:
		return domain.Identity{}, false
	}

	return domain.Identity{
		UserID: userID,
		Role:   role,
		Email:  optionalHeader(r, HeaderUserEmail),
		Phone:  optionalHeader(r, HeaderUserPhone),
	}, true
}

func optionalHeader(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.Header.Get(name))
	if v == "" {
		return nil
	}
	return &v
}
