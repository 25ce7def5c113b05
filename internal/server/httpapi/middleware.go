package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/server/auth"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// authMiddleware verifies the bearer token and stores the owner identity in
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken)
			return
		}

		owner, err := auth.GetOwnerFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFromContext returns the authenticated owner set by authMiddleware.
func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
