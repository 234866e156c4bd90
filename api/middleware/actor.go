package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tiendahub/tienda-backend/api/responses"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
	"github.com/tiendahub/tienda-backend/pkg/logger"
)

const (
	userIDHeader  = "X-User-Id"
	storeIDHeader = "X-Store-Id"
)

// ActorContext resolves the acting user and store from trusted gateway
// headers and injects them into the request context. The edge in front of
// this service authenticates and sets the headers.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := r.Header.Get(userIDHeader)
			if userID != "" {
				if _, err := uuid.Parse(userID); err != nil {
					responses.WriteError(ctx, logg, w,
						pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed user header"))
					return
				}
				ctx = WithUserID(ctx, userID)
				if logg != nil {
					ctx = logg.WithUserID(ctx, userID)
				}
			}

			storeID := r.Header.Get(storeIDHeader)
			if storeID != "" {
				if _, err := uuid.Parse(storeID); err != nil {
					responses.WriteError(ctx, logg, w,
						pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed store header"))
					return
				}
				ctx = WithStoreID(ctx, storeID)
				if logg != nil {
					ctx = logg.WithStoreID(ctx, storeID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects requests that carry no authenticated user.
func RequireActor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
