package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

// Verifier resolves the subject of a valid token into the request context,
// rejecting subjects that no longer exist or may not sign in.
type Verifier func(ctx context.Context, id uuid.UUID) (context.Context, error)

var errNoToken = apperr.Unauthorized("No token, authorization denied")

// Authenticate requires an "Authorization: Bearer <token>" header signed by
// tokens.
func Authenticate(tokens *auth.Issuer, verify Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				Error(w, errNoToken)
				return
			}

			id, err := tokens.Parse(raw)
			if err != nil {
				Error(w, err)
				return
			}

			ctx, err := verify(r.Context(), id)
			if err != nil {
				Error(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// BusinessID returns the authenticated business, failing when the route was
// mounted without business authentication.
func BusinessID(r *http.Request) (uuid.UUID, error) {
	id, ok := auth.BusinessID(r.Context())
	if !ok {
		return uuid.Nil, errNoToken
	}

	return id, nil
}
