package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(s *service.AdminService) *AdminHandler { return &AdminHandler{svc: s} }

// MountAdminRoutes cuelga las rutas de mantenimiento bajo /admin.
func MountAdminRoutes(r chi.Router, h *AdminHandler) {
	r.Get("/admin/scores/summary", h.GetSummary)
	r.Post("/admin/movies/rebuild-stats", h.RebuildMovieStats)
	r.Post("/admin/users/{id}/rebuild-scores", h.RebuildUserScores)
	r.Post("/admin/users/rebuild-scores", h.RebuildAllUserScores)
	r.Get("/admin/status", Status)
}

// @Summary Resumen del estado de los scores (ADMIN)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ScoresSummary
// @Router /admin/scores/summary [get]
func (h *AdminHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	summary, err := h.svc.GetScoresSummary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(summary)
}

// @Summary Recalcular ratingStats de todo el catálogo (ADMIN)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Router /admin/movies/rebuild-stats [post]
func (h *AdminHandler) RebuildMovieStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	updated, err := h.svc.RebuildMovieStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"updatedMovies": updated})
}

// @Summary Marcar los scores de un usuario para recálculo completo (ADMIN)
// @Tags admin
// @Security BearerAuth
// @Param id path int true "userId"
// @Success 204
// @Router /admin/users/{id}/rebuild-scores [post]
func (h *AdminHandler) RebuildUserScores(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := h.svc.RebuildUserScores(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Marcar los scores de todos los usuarios para recálculo (ADMIN)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Router /admin/users/rebuild-scores [post]
func (h *AdminHandler) RebuildAllUserScores(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	marked, err := h.svc.RebuildAllUserScores(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"markedUsers": marked})
}
