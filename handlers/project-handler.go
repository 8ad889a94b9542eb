package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/services"
	"github.com/mohammedh897/graduation-backend/utils"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	leaderID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req struct {
		ProjectName  string   `json:"projectName"`
		Description  string   `json:"description"`
		SupervisorID string   `json:"supervisorId"`
		Emails       []string `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if req.ProjectName == "" || req.SupervisorID == "" {
		utils.Error(w, "Project name and supervisor are required", http.StatusBadRequest)
		return
	}
	supervisorID, err := primitive.ObjectIDFromHex(req.SupervisorID)
	if err != nil {
		respondError(w, services.ErrInvalidSupervisor)
		return
	}

	result, err := h.service.CreateProject(r.Context(), leaderID, req.ProjectName, req.Description, supervisorID, req.Emails)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Project created successfully", result, http.StatusCreated)
}

func (h *ProjectHandler) JoinProject(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req struct {
		TeamCode string `json:"teamCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.service.JoinProject(r.Context(), userID, req.TeamCode)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Joined project successfully", project, http.StatusOK)
}

func (h *ProjectHandler) GetMyProject(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	view, err := h.service.GetMembership(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if view == nil {
		utils.Success(w, "No project found", nil, http.StatusOK)
		return
	}

	utils.Success(w, "Project retrieved", view, http.StatusOK)
}

func (h *ProjectHandler) GetProjectMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	members, err := h.service.GetProjectMembers(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Project members retrieved", members, http.StatusOK)
}

func (h *ProjectHandler) SetFinalPresentation(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Date time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date.IsZero() {
		utils.Error(w, "A valid date is required", http.StatusBadRequest)
		return
	}

	fp, err := h.service.SetFinalPresentation(r.Context(), supervisorID, projectID, req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Final presentation scheduled", fp, http.StatusOK)
}

func (h *ProjectHandler) GetFinalPresentation(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
	if err != nil {
		utils.Error(w, "Invalid project ID format", http.StatusBadRequest)
		return
	}

	fp, err := h.service.GetFinalPresentation(r.Context(), userID, projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Final presentation details", fp, http.StatusOK)
}
