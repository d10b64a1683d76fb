package export

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/sketchboard/internal/board"
	"github.com/inamate/sketchboard/internal/engine"
)

// DisplayLister compiles the current display list of a board.
type DisplayLister interface {
	DisplayList(ctx context.Context, boardID string) ([]engine.DrawCommand, error)
}

type Handler struct {
	boards DisplayLister
}

func NewHandler(boards DisplayLister) *Handler {
	return &Handler{boards: boards}
}

// ExportSVG serves board boardId as an SVG attachment.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	commands, err := h.boards.DisplayList(r.Context(), boardID)
	if err != nil {
		if errors.Is(err, board.ErrNotFound) {
			http.Error(w, "board not found", http.StatusNotFound)
			return
		}
		slog.Error("export board", "board", boardID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+boardID+`.svg"`)
	if err := WriteSVG(w, commands); err != nil {
		slog.Error("write svg", "board", boardID, "error", err)
	}
}
