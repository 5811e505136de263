package handlers

import (
	"context"
	"net/http"

	"github.com/andrewpaige1/mindcanvas-api/completion"
	"github.com/andrewpaige1/mindcanvas-api/utils"
	"go.uber.org/zap"
)

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Command string `json:"command" validate:"required"`
}

// POST /api/generate
func (h *APIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := h.decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.CompletionTimeout)
	defer cancel()

	// The first choice goes back verbatim, even when empty.
	result, err := h.Completer.Complete(ctx, completion.SystemPrompt(req.Command), req.Prompt)
	if err != nil {
		h.Logger.Error("AI error", zap.String("command", req.Command), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to generate text")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"result": result})
}
