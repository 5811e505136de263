package handlers

import (
	"errors"
	"net/http"

	"github.com/andrewpaige1/mindcanvas-api/editor"
	"github.com/andrewpaige1/mindcanvas-api/utils"
	"go.uber.org/zap"
)

type openEditorRequest struct {
	NodeID string `json:"nodeID" validate:"required"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type rewriteRequest struct {
	Command string `json:"command" validate:"required"`
}

// GET /api/canvas/editor
func (h *APIHandler) GetEditor(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok {
		return
	}

	view, open, err := ws.Session.Current(r.Context())
	if err != nil {
		h.Logger.Error("failed to read editor state", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to read editor state")
		return
	}
	if !open {
		utils.WriteError(w, http.StatusNotFound, "No node is open")
		return
	}

	utils.WriteJSON(w, http.StatusOK, view)
}

// POST /api/canvas/editor
func (h *APIHandler) OpenEditor(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok || !loaded(w, ws) {
		return
	}

	var req openEditorRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := ws.Session.Open(r.Context(), req.NodeID)
	if err != nil {
		h.writeEditorError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, view)
}

// DELETE /api/canvas/editor
func (h *APIHandler) CloseEditor(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok {
		return
	}

	if err := ws.Session.Close(r.Context()); err != nil {
		h.writeEditorError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/canvas/editor/content
func (h *APIHandler) UpdateEditorContent(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok || !loaded(w, ws) {
		return
	}

	var req contentRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Edits without an open node are dropped, not rejected.
	if _, err := ws.Session.Edit(r.Context(), req.Content); err != nil {
		h.writeEditorError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/canvas/editor/rewrite
func (h *APIHandler) RewriteEditorContent(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok || !loaded(w, ws) {
		return
	}

	var req rewriteRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := ws.Session.Rewrite(r.Context(), req.Command)
	if err != nil {
		h.writeEditorError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (h *APIHandler) writeEditorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrUnknownCommand):
		utils.WriteError(w, http.StatusBadRequest, "Unknown rewrite command")
	case errors.Is(err, editor.ErrUnknownNode):
		utils.WriteError(w, http.StatusNotFound, "Node not found")
	case errors.Is(err, editor.ErrRewriteInFlight):
		utils.WriteError(w, http.StatusConflict, "A rewrite is already running")
	case errors.Is(err, editor.ErrStaleRewrite):
		utils.WriteError(w, http.StatusConflict, "The editor moved on; rewrite discarded")
	case errors.Is(err, editor.ErrNoActiveNode):
		utils.WriteError(w, http.StatusConflict, "No node is open")
	case errors.Is(err, editor.ErrRewriteFailed):
		utils.WriteError(w, http.StatusBadGateway, "Failed to generate text")
	default:
		h.writeSyncError(w, err)
	}
}
