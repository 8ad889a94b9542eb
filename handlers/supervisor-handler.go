package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/services"
	"github.com/mohammedh897/graduation-backend/utils"
)

type SupervisorHandler struct {
	service *services.SupervisorService
}

func NewSupervisorHandler(service *services.SupervisorService) *SupervisorHandler {
	return &SupervisorHandler{service: service}
}

func (h *SupervisorHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req struct {
		Status models.SupervisorStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	supervisor, err := h.service.UpdateStatus(r.Context(), supervisorID, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Status updated successfully", map[string]interface{}{
		"id":       supervisor.ID,
		"username": supervisor.Username,
		"status":   supervisor.Status,
	}, http.StatusOK)
}

func (h *SupervisorHandler) GetAvailableSupervisors(w http.ResponseWriter, r *http.Request) {
	supervisors, err := h.service.AvailableSupervisors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Available supervisors retrieved successfully", supervisors, http.StatusOK)
}

func (h *SupervisorHandler) GetMyProjects(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	projects, err := h.service.SupervisedProjects(r.Context(), supervisorID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Projects retrieved", projects, http.StatusOK)
}

func (h *SupervisorHandler) GetMyStudents(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	students, err := h.service.SupervisedStudents(r.Context(), supervisorID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Students retrieved", students, http.StatusOK)
}

func (h *SupervisorHandler) GetTeamDetails(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
	if err != nil {
		utils.Error(w, "Invalid project ID format", http.StatusBadRequest)
		return
	}

	details, err := h.service.TeamDetails(r.Context(), supervisorID, projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Team details retrieved", details, http.StatusOK)
}

func (h *SupervisorHandler) GetTeamTasks(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
	if err != nil {
		utils.Error(w, "Invalid project ID format", http.StatusBadRequest)
		return
	}

	tasks, err := h.service.TeamTasks(r.Context(), supervisorID, projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Project tasks retrieved", tasks, http.StatusOK)
}

func (h *SupervisorHandler) SetMaxProjects(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req struct {
		MaxProjects int `json:"maxProjects"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.MaxProjects < 1 {
		utils.Error(w, "Max projects must be at least 1", http.StatusBadRequest)
		return
	}

	result, err := h.service.SetMaxProjects(r.Context(), supervisorID, req.MaxProjects)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Max projects updated", result, http.StatusOK)
}
