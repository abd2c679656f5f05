package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type RecommendHandler struct {
	svc *service.RecommendService
}

func NewRecommendHandler(s *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

// @Summary Recomendaciones para un usuario
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Param method query string false "survey-based|user-based|item-based|explorative|hybrid (default: hybrid)"
// @Param amount query int false "cantidad de recomendaciones (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} service.RecResponse
// @Router /users/{id}/recommendations [get]
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	h.getRecommendations(w, r, userID)
}

// @Summary Mis recomendaciones
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param method query string false "survey-based|user-based|item-based|explorative|hybrid (default: hybrid)"
// @Param amount query int false "cantidad de recomendaciones (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} service.RecResponse
// @Router /me/recommendations [get]
func (h *RecommendHandler) GetMyRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.getRecommendations(w, r, UserIDFromContext(r.Context()))
}

func (h *RecommendHandler) getRecommendations(w http.ResponseWriter, r *http.Request, userID int) {
	amount, _ := strconv.Atoi(r.URL.Query().Get("amount"))

	resp, err := h.svc.Recommend(r.Context(), service.RecRequest{
		UserID:  userID,
		Method:  r.URL.Query().Get("method"),
		Amount:  amount,
		Refresh: r.URL.Query().Get("refresh") == "true",
		Dirty:   recommend.ParseComponentSet(r.URL.Query().Get("dirty")),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// @Summary Catálogo filtrado por género y/o década, ordenado por score
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param genre query string false "género exacto del catálogo"
// @Param decade query int false "década de estreno (p.e. 1990)"
// @Param method query string false "survey-based|user-based|item-based|explorative|hybrid (default: hybrid)"
// @Param amount query int false "cantidad de películas (máx 50)"
// @Success 200 {object} service.RecResponse
// @Router /me/recommendations/filtered [get]
func (h *RecommendHandler) GetMyFiltered(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	amount, _ := strconv.Atoi(r.URL.Query().Get("amount"))
	decade, _ := strconv.Atoi(r.URL.Query().Get("decade"))

	resp, err := h.svc.Filtered(r.Context(), service.RecRequest{
		UserID: UserIDFromContext(r.Context()),
		Method: r.URL.Query().Get("method"),
		Amount: amount,
		Dirty:  recommend.ParseComponentSet(r.URL.Query().Get("dirty")),
	}, r.URL.Query().Get("genre"), decade)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Recomendaciones en tiempo real (WebSocket)
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param method query string false "método de recomendación"
// @Param amount query int false "cantidad de recomendaciones (máx 50)"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/ws/recommendations [get]
func (h *RecommendHandler) GetRecommendationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "No se pudo abrir WebSocket", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	amount, _ := strconv.Atoi(r.URL.Query().Get("amount"))

	// Mensaje inicial
	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, recalculando scores pendientes…",
	})

	resp, err := h.svc.Recommend(r.Context(), service.RecRequest{
		UserID:  userID,
		Method:  r.URL.Query().Get("method"),
		Amount:  amount,
		Refresh: true,
	})
	if err != nil {
		conn.WriteJSON(map[string]any{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}

	for _, comp := range resp.Recomputed {
		conn.WriteJSON(map[string]any{
			"type":      "progress",
			"component": comp,
			"msg":       "componente recalculado",
		})
	}

	// Mensaje final con recomendaciones
	conn.WriteJSON(map[string]any{
		"type":        "recommendations",
		"userId":      userID,
		"method":      resp.Method,
		"movies":      resp.Movies,
		"generatedAt": time.Now(),
	})
}

// @Summary Historial de recomendaciones servidas
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param limit query int false "límite (default: 20)"
// @Success 200 {array} models.Recommendation
// @Router /me/recommendations/history [get]
func (h *RecommendHandler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.svc.History(r.Context(), UserIDFromContext(r.Context()), int64(limit))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}
