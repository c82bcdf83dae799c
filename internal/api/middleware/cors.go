package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS разрешает виджету бронирования обращаться к публичным маршрутам
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderUserID, HeaderUserRole, HeaderUserEmail, HeaderUserPhone},
		MaxAge:         300,
	})
}
