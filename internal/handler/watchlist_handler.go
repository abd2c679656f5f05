package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
)

type WatchlistHandler struct {
	svc *service.WatchlistService
}

func NewWatchlistHandler(s *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{svc: s}
}

// @Summary Mi watchlist
// @Tags watchlist
// @Security BearerAuth
// @Produce json
// @Success 200 {array} service.WatchlistItem
// @Router /me/watchlist [get]
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	items, err := h.svc.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(items)
}

// @Summary Agregar película a mi watchlist
// @Tags watchlist
// @Security BearerAuth
// @Param movieId path int true "movieId"
// @Success 204
// @Router /me/watchlist/{movieId} [post]
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))
	if err := h.svc.Add(r.Context(), UserIDFromContext(r.Context()), movieID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Quitar película de mi watchlist
// @Tags watchlist
// @Security BearerAuth
// @Param movieId path int true "movieId"
// @Success 204
// @Router /me/watchlist/{movieId} [delete]
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))
	if err := h.svc.Remove(r.Context(), UserIDFromContext(r.Context()), movieID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
