package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	svc *service.AuthService
}

type userResponse struct {
	UserID            int    `json:"userId"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Username          string `json:"username,omitempty"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	InitializedScores bool   `json:"initializedScores"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

func toUserResponse(u *models.UserDoc) userResponse {
	return userResponse{
		UserID:            u.UserID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Username:          u.Username,
		Email:             u.Email,
		Role:              u.Role,
		InitializedScores: u.InitializedScores,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

// @Summary Register
// @Description Crea un usuario nuevo
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "datos"
// @Success 201 {object} userResponse
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.svc.Register(r.Context(), service.RegisterUserData{
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toUserResponse(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credenciales"
// @Success 200 {object} map[string]any
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  toUserResponse(u),
	})
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`

	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Username  *string `json:"username"`
}

// @Summary Actualizar usuario
// @Description Actualiza los datos de un usuario existente. Todos los campos son opcionales.
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body updateUserRequest true "datos a actualizar"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /users/{id}/update [put]
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.svc.UpdateUser(r.Context(), id, service.UpdateUserData{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"updated": true})
}

// @Summary Obtener usuario por id (ADMIN)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} userResponse
// @Router /users/{id} [get]
func (h *AuthHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	u, err := h.svc.GetUserByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if u == nil {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(toUserResponse(u))
}
