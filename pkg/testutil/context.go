package testutil

import (
	"context"
	"net/http"
	"time"

	id "verdict/pkg/domain"
	"verdict/pkg/requestcontext"
)

// AuthedContext builds a context carrying an authenticated user, the
// asserted project scope, and a pinned request time. This is the typical
// state a service sees after the middleware chain ran.
func AuthedContext(userID id.UserID, projectID id.ProjectID, now time.Time) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), userID)
	ctx = requestcontext.WithProjectID(ctx, projectID)
	return requestcontext.WithTime(ctx, now)
}

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithProjectScope adds the asserted project scope to the request context,
// as the scope middleware would from the X-Project-ID header.
func WithProjectScope(req *http.Request, projectID id.ProjectID) *http.Request {
	return req.WithContext(requestcontext.WithProjectID(req.Context(), projectID))
}

// WithAuth adds both the user ID and the project scope to the request
// context. This is the typical state for an authenticated project request.
func WithAuth(req *http.Request, userID id.UserID, projectID id.ProjectID) *http.Request {
	return WithProjectScope(WithUserID(req, userID), projectID)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
