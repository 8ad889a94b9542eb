package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mohammedh897/graduation-backend/middleware"
	"github.com/mohammedh897/graduation-backend/services"
	"github.com/mohammedh897/graduation-backend/utils"
)

// statusForError maps service error kinds onto HTTP status codes. Anything
// unrecognized is an unexpected store or collaborator failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrAlreadyInProject),
		errors.Is(err, services.ErrInvalidSupervisor),
		errors.Is(err, services.ErrSupervisorUnavailable),
		errors.Is(err, services.ErrProjectFull),
		errors.Is(err, services.ErrNotInProject),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrSelfDeletion):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrInvalidCode):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	utils.Error(w, err.Error(), statusForError(err))
}

// requesterID pulls the authenticated user's id from the verified claims.
func requesterID(r *http.Request) (primitive.ObjectID, error) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		return primitive.NilObjectID, errors.New("missing authentication claims")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}
