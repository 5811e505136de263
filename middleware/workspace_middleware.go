package middleware

import (
	"context"
	"net/http"

	"github.com/andrewpaige1/mindcanvas-api/utils"
	"github.com/andrewpaige1/mindcanvas-api/workspace"
)

type contextKey string

const workspaceKey contextKey = "workspace"

// WithWorkspace makes sure the token's owner has a workspace and attaches it to
// the request context.
func WithWorkspace(registry *workspace.Registry, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := utils.GetOwnerID(r)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "No subject found in token")
			return
		}

		ws, ok := registry.Get(ownerID)
		if !ok {
			utils.WriteError(w, http.StatusServiceUnavailable, "Server is shutting down")
			return
		}

		ctx := context.WithValue(r.Context(), workspaceKey, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// WorkspaceFromContext returns the workspace attached by WithWorkspace.
func WorkspaceFromContext(ctx context.Context) (*workspace.Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey).(*workspace.Workspace)
	return ws, ok
}
