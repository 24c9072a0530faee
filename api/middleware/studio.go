package middleware

import (
	"net/http"

	"github.com/framewell/framewell-backend/api/responses"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/logger"
)

// StudioContext rejects requests whose token carries no active studio.
// Client accounts never pass this gate; their routes live outside it.
func StudioContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if StudioIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "studio context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
