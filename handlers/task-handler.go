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

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var input services.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(r.Context(), userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Task created successfully", task, http.StatusCreated)
}

func (h *TaskHandler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	tasks, err := h.service.ProjectTasks(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Tasks retrieved", tasks, http.StatusOK)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), userID, taskID, patch)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Task updated", task, http.StatusOK)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTask(r.Context(), userID, taskID); err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Task deleted successfully", nil, http.StatusOK)
}

// GetAllTasks is the admin listing across all projects.
func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.AllTasks(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "All tasks retrieved", tasks, http.StatusOK)
}
