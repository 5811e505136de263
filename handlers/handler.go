package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/completion"
	"github.com/andrewpaige1/mindcanvas-api/middleware"
	"github.com/andrewpaige1/mindcanvas-api/utils"
	"github.com/andrewpaige1/mindcanvas-api/workspace"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// APIHandler carries what the handlers share. Per-owner state lives in the
// workspace attached to each request.
type APIHandler struct {
	Completer         completion.Completer
	CompletionTimeout time.Duration
	Logger            *zap.Logger

	validate *validator.Validate
}

func NewAPIHandler(completer completion.Completer, timeout time.Duration, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &APIHandler{
		Completer:         completer,
		CompletionTimeout: timeout,
		Logger:            logger,
		validate:          v,
	}
}

// decode reads a JSON body into dst and runs its validate tags.
func (h *APIHandler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
			}
			return errors.New(strings.Join(fields, "; "))
		}
		return err
	}
	return nil
}

// workspaceOf returns the request's workspace or writes a 401.
func workspaceOf(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, ok := middleware.WorkspaceFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "No workspace for this request")
		return nil, false
	}
	return ws, true
}

// loaded writes a 409 unless the canvas has been loaded.
func loaded(w http.ResponseWriter, ws *workspace.Workspace) bool {
	if ws.Syncer.MindMap() == nil {
		utils.WriteError(w, http.StatusConflict, "Canvas not loaded")
		return false
	}
	return true
}
