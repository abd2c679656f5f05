package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler { return &MovieHandler{svc: s} }

// @Summary Obtener película por id
// @Tags movies
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {object} models.MovieDoc
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	m, err := h.svc.GetMovie(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if m == nil {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(m)
}

// @Summary Buscar películas
// @Tags movies
// @Produce json
// @Param q query string false "búsqueda por título"
// @Param genre query string false "filtrar por género"
// @Param decade query int false "filtrar por década de estreno (p.e. 1990)"
// @Param limit query int false "límite (default: 20)"
// @Param offset query int false "offset (default: 0)"
// @Success 200 {array} models.MovieDoc
// @Router /movies/search [get]
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query().Get("q")
	genre := r.URL.Query().Get("genre")
	decade, _ := strconv.Atoi(r.URL.Query().Get("decade"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	movies, err := h.svc.Search(r.Context(), q, genre, decade, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(movies)
}

// @Summary Top de películas
// @Tags movies
// @Produce json
// @Param metric query string false "popular|rating (default: popular)"
// @Param limit query int false "límite (default: 20)"
// @Success 200 {array} models.MovieDoc
// @Router /movies/top [get]
func (h *MovieHandler) Top(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	metric := r.URL.Query().Get("metric")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	movies, err := h.svc.Top(r.Context(), metric, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(movies)
}

// @Summary Géneros del catálogo
// @Tags movies
// @Produce json
// @Success 200 {array} string
// @Router /movies/genres [get]
func (h *MovieHandler) Genres(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	genres, err := h.svc.Genres(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(genres)
}
