package handler

import (
	"encoding/json"
	"net/http"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"
)

type PreferenceHandler struct {
	svc *service.PreferenceService
}

func NewPreferenceHandler(s *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: s}
}

type surveyRequest struct {
	Included []string `json:"included"`
	Excluded []string `json:"excluded"`
}

// @Summary Enviar encuesta de preferencias de géneros
// @Description Reemplaza por completo las respuestas anteriores.
// @Tags preferences
// @Security BearerAuth
// @Accept json
// @Param body body surveyRequest true "géneros incluidos y excluidos"
// @Success 200 {object} dirtyResponse
// @Router /me/preferences/survey [post]
func (h *PreferenceHandler) PostSurvey(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dirty, err := h.svc.SubmitSurvey(r.Context(), UserIDFromContext(r.Context()), req.Included, req.Excluded)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeDirty(w, dirty)
}

// @Summary Ver mis respuestas de la encuesta
// @Tags preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.SurveyState
// @Router /me/preferences/survey [get]
func (h *PreferenceHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	state, err := h.svc.GetSurvey(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(state)
}

// @Summary Perfil de preferencias (contadores por género y década)
// @Tags preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /me/preferences [get]
func (h *PreferenceHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	genres, decades, err := h.svc.Profile(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"genres":  genres,
		"decades": decades,
	})
}

// @Summary Preferencias derivadas del historial (géneros y décadas)
// @Tags preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ExtractedPreferences
// @Router /me/preferences/extracted [get]
func (h *PreferenceHandler) GetExtracted(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	prefs, err := h.svc.ExtractPreferences(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(prefs)
}
