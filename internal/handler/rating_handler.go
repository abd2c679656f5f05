package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
)

type RatingHandler struct {
	svc *service.RatingService
}

func NewRatingHandler(s *service.RatingService) *RatingHandler { return &RatingHandler{svc: s} }

type ratingRequest struct {
	MovieID int     `json:"movieId"`
	Rating  float64 `json:"rating"`
}

// las operaciones de valoración devuelven los componentes de score que
// quedaron pendientes, para que el cliente sepa qué va a recalcularse
type dirtyResponse struct {
	DirtyComponents []string `json:"dirtyComponents"`
}

func writeDirty(w http.ResponseWriter, set recommend.ComponentSet) {
	_ = json.NewEncoder(w).Encode(dirtyResponse{DirtyComponents: set.Strings()})
}

// @Summary Crear/actualizar rating
// @Tags ratings
// @Security BearerAuth
// @Accept json
// @Param id path int true "userId"
// @Param body body ratingRequest true "rating"
// @Success 200 {object} dirtyResponse
// @Router /users/{id}/ratings [post]
func (h *RatingHandler) PostRating(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	h.postRating(w, r, userID)
}

// @Summary Crear/actualizar mi rating
// @Tags ratings
// @Security BearerAuth
// @Accept json
// @Param body body ratingRequest true "rating"
// @Success 200 {object} dirtyResponse
// @Router /me/ratings [post]
func (h *RatingHandler) PostMyRating(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.postRating(w, r, UserIDFromContext(r.Context()))
}

func (h *RatingHandler) postRating(w http.ResponseWriter, r *http.Request, userID int) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rating < 0.5 || req.Rating > 5.0 {
		http.Error(w, "rating fuera de rango (0.5 a 5.0)", http.StatusBadRequest)
		return
	}
	dirty, err := h.svc.AddOrUpdate(r.Context(), userID, req.MovieID, req.Rating)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeDirty(w, dirty)
}

// @Summary Listar ratings del usuario
// @Tags ratings
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Router /users/{id}/ratings [get]
func (h *RatingHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	h.getRatings(w, r, userID)
}

// @Summary Listar mis ratings
// @Tags ratings
// @Security BearerAuth
// @Produce json
// @Router /me/ratings [get]
func (h *RatingHandler) GetMyRatings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.getRatings(w, r, UserIDFromContext(r.Context()))
}

func (h *RatingHandler) getRatings(w http.ResponseWriter, r *http.Request, userID int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 100
	}
	list, err := h.svc.GetByUser(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

// @Summary Listar mis películas ignoradas
// @Tags ratings
// @Security BearerAuth
// @Produce json
// @Router /me/ignored [get]
func (h *RatingHandler) GetMyIgnored(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	list, err := h.svc.GetIgnoredByUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

// @Summary Ignorar una película (no volver a recomendarla)
// @Tags ratings
// @Security BearerAuth
// @Param movieId path int true "movieId"
// @Success 200 {object} dirtyResponse
// @Router /me/ignored/{movieId} [post]
func (h *RatingHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))
	dirty, err := h.svc.Ignore(r.Context(), UserIDFromContext(r.Context()), movieID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeDirty(w, dirty)
}

// @Summary Dejar de ignorar una película
// @Tags ratings
// @Security BearerAuth
// @Param movieId path int true "movieId"
// @Success 200 {object} dirtyResponse
// @Router /me/ignored/{movieId} [delete]
func (h *RatingHandler) Unignore(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))
	dirty, err := h.svc.Unignore(r.Context(), UserIDFromContext(r.Context()), movieID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeDirty(w, dirty)
}
