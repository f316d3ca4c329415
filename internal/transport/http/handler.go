package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/service"
	httpmw "github.com/cwrk-planet/watch-together/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type WatchSvc interface {
	RoomInfo(roomID string) (service.RoomInfo, error)
	Stats() service.Stats
}

type Handler struct {
	svc WatchSvc
}

func NewHandler(svc WatchSvc) *Handler {
	return &Handler{svc: svc}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /rooms/{id}: проверить ссылку до входа, код доступа не отдаётся
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.RoomInfo(chi.URLParam(r, "id"))
	if err != nil {
		status, msg := toHTTP(err)
		if status >= http.StatusInternalServerError {
			httpmw.L(r.Context()).Error("handler.GetRoom", "err", err)
		}
		writeJSON(w, status, ErrorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

func toHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusNotFound, "room_not_found"
	case errors.Is(err, domain.ErrWrongAccessCode):
		return http.StatusForbidden, "wrong_access_code"
	case errors.Is(err, domain.ErrRoomFull), errors.Is(err, domain.ErrAlreadyMember):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not_authenticated"
	case errors.Is(err, domain.ErrInvalidVideo),
		errors.Is(err, domain.ErrMessageEmpty),
		errors.Is(err, domain.ErrMessageTooLong):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
