package handlers

import (
	"errors"
	"net/http"

	"github.com/andrewpaige1/mindcanvas-api/syncer"
	"github.com/andrewpaige1/mindcanvas-api/utils"
	"go.uber.org/zap"
)

type positionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type edgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// GET /api/canvas
func (h *APIHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok {
		return
	}

	snapshot, err := ws.Syncer.Load(r.Context(), ws.OwnerID)
	if err != nil {
		if errors.Is(err, syncer.ErrNoMap) {
			utils.WriteError(w, http.StatusServiceUnavailable, "Mind map unavailable")
			return
		}
		utils.WriteError(w, http.StatusBadGateway, "Failed to load canvas")
		return
	}

	utils.WriteJSON(w, http.StatusOK, snapshot)
}

// POST /api/canvas/nodes
func (h *APIHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok || !loaded(w, ws) {
		return
	}

	var req positionRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := ws.Syncer.CreateNode(r.Context(), *req.X, *req.Y)
	if err != nil {
		h.writeSyncError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, node)
}

// PUT /api/canvas/nodes/{nodeID}/position
func (h *APIHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok || !loaded(w, ws) {
		return
	}

	nodeID := r.PathValue("nodeID")
	if nodeID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Node ID is required")
		return
	}

	var req positionRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ws.Syncer.MoveNode(r.Context(), nodeID, *req.X, *req.Y); err != nil {
		h.writeSyncError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/canvas/edges
func (h *APIHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok || !loaded(w, ws) {
		return
	}

	var req edgeRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	edge, err := ws.Syncer.Connect(req.Source, req.Target)
	if err != nil {
		h.writeSyncError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, edge)
}

// GET /api/canvas/mutations
func (h *APIHandler) GetMutations(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceOf(w, r)
	if !ok {
		return
	}

	mutations := ws.Syncer.Mutations()
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"mutations": mutations,
		"failed":    len(ws.Syncer.Failed()),
	})
}

func (h *APIHandler) writeSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, syncer.ErrNotLoaded):
		utils.WriteError(w, http.StatusConflict, "Canvas not loaded")
	case errors.Is(err, syncer.ErrUnknownNode):
		utils.WriteError(w, http.StatusNotFound, "Node not found")
	case errors.Is(err, syncer.ErrDanglingEdge):
		utils.WriteError(w, http.StatusBadRequest, "Edge endpoints must exist and the edge must be new")
	default:
		h.Logger.Error("canvas mutation failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update canvas")
	}
}
