package middleware

import (
	"net/http"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

// ProjectScopeHeader is the header decision-level routes use to assert
// which project the caller is operating in.
const ProjectScopeHeader = "X-Project-ID"

// ProjectScope pins the asserted project scope in the request context. A
// missing header passes through with no scope; services treat an absent
// scope as a scope error on the operations that need one. A malformed
// header is rejected here.
func ProjectScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ProjectScopeHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		projectID, err := id.ParseProjectID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeScope, "malformed "+ProjectScopeHeader+" header"))
			return
		}
		ctx := requestcontext.WithProjectID(r.Context(), projectID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
