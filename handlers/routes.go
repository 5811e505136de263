package handlers

import (
	"net/http"

	"github.com/andrewpaige1/mindcanvas-api/middleware"
	"github.com/andrewpaige1/mindcanvas-api/workspace"
)

// Register adds the authenticated API routes to mux. Every route expects the
// token check to run in front of mux.
func (h *APIHandler) Register(mux *http.ServeMux, registry *workspace.Registry) {
	withWorkspace := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithWorkspace(registry, next)
	}

	// Generate
	mux.HandleFunc("POST /api/generate", h.Generate)

	// Canvas
	mux.HandleFunc("GET /api/canvas", withWorkspace(h.GetCanvas))
	mux.HandleFunc("POST /api/canvas/nodes", withWorkspace(h.CreateNode))
	mux.HandleFunc("PUT /api/canvas/nodes/{nodeID}/position", withWorkspace(h.MoveNode))
	mux.HandleFunc("POST /api/canvas/edges", withWorkspace(h.CreateEdge))
	mux.HandleFunc("GET /api/canvas/mutations", withWorkspace(h.GetMutations))

	// Editor
	mux.HandleFunc("GET /api/canvas/editor", withWorkspace(h.GetEditor))
	mux.HandleFunc("POST /api/canvas/editor", withWorkspace(h.OpenEditor))
	mux.HandleFunc("DELETE /api/canvas/editor", withWorkspace(h.CloseEditor))
	mux.HandleFunc("PUT /api/canvas/editor/content", withWorkspace(h.UpdateEditorContent))
	mux.HandleFunc("POST /api/canvas/editor/rewrite", withWorkspace(h.RewriteEditorContent))
}
