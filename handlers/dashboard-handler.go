package handlers

import (
	"net/http"

	"github.com/mohammedh897/graduation-backend/services"
	"github.com/mohammedh897/graduation-backend/utils"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := requesterID(r)
	if err != nil {
		utils.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	data, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, "Dashboard data", data, http.StatusOK)
}
