package board

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tidwall/sjson"

	"github.com/inamate/sketchboard/internal/auth"
	"github.com/inamate/sketchboard/internal/collab"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/history"
	"github.com/inamate/sketchboard/internal/snapshot"
)

// maxSnapshotSize caps imported snapshot bodies.
const maxSnapshotSize = 8 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the board routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/boards", h.Create).Methods("POST")
	r.HandleFunc("/boards/{boardId}", h.Get).Methods("GET")
	r.HandleFunc("/boards/{boardId}/snapshot", h.GetSnapshot).Methods("GET")
	r.HandleFunc("/boards/{boardId}/snapshot", h.PutSnapshot).Methods("PUT")
	r.HandleFunc("/boards/{boardId}/save", h.Save).Methods("POST")
	r.HandleFunc("/boards/{boardId}/ops", h.Apply).Methods("POST")
	r.HandleFunc("/boards/{boardId}/display", h.DisplayList).Methods("GET")
}

type createRequest struct {
	Sample bool `json:"sample"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	info, err := h.service.Create(r.Context(), req.Sample)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusCreated, info)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Snapshot(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotSize))
	if err != nil {
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.service.Import(r.Context(), mux.Vars(r)["boardId"], data); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Save(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, map[string]any{"id": rec.ID, "version": rec.Version})
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var op collab.Operation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil || op.Type == "" {
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid operation"})
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	result, err := h.service.Apply(r.Context(), mux.Vars(r)["boardId"], userID, op)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := []byte(`{}`)
	if len(result) > 0 {
		if out, err = sjson.SetRawBytes(out, "result", result); err != nil {
			handleServiceError(w, err)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (h *Handler) DisplayList(w http.ResponseWriter, r *http.Request) {
	commands, err := h.service.DisplayList(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, commands)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, document.ErrNotFound):
		auth.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrUnknownOperation),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, snapshot.ErrMalformed),
		errors.Is(err, snapshot.ErrUnknownKind),
		errors.Is(err, snapshot.ErrUnsupportedVersion),
		errors.Is(err, document.ErrDuplicateID):
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrInvalidGeometry):
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, history.ErrCommandFailed):
		auth.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		auth.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
