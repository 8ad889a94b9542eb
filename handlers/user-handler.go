package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/services"
	"github.com/mohammedh897/graduation-backend/utils"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "User registered", map[string]interface{}{"userId": user.ID}, http.StatusCreated)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Login successful", map[string]string{"token": token}, http.StatusOK)
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Users retrieved", users, http.StatusOK)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	adminID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteUser(r.Context(), adminID, targetID); err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "User deleted successfully", nil, http.StatusOK)
}
