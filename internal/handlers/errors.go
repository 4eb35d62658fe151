package handlers

import (
	"errors"
	"net/http"

	"github.com/Almer24/it-ticketing-system/internal/middleware"
	"github.com/Almer24/it-ticketing-system/internal/repository"
	"github.com/Almer24/it-ticketing-system/internal/service"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

// respondError maps domain errors to HTTP statuses. Out-of-scope and
// missing records share 404 so callers cannot probe for existence.
func respondError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Fail(w, "validation failed", verr.Fields)
	case errors.Is(err, repository.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrTicketClosed):
		utils.Error(w, http.StatusForbidden, "ticket is closed")
	case errors.Is(err, service.ErrForbidden):
		utils.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrSelfDelete):
		utils.Error(w, http.StatusForbidden, service.ErrSelfDelete.Error())
	case errors.Is(err, repository.ErrDuplicateNumber):
		utils.Error(w, http.StatusConflict, repository.ErrDuplicateNumber.Error())
	case errors.Is(err, repository.ErrDuplicate):
		utils.Error(w, http.StatusConflict, repository.ErrDuplicate.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// actorFrom pulls the authenticated caller out of the request context.
func actorFrom(r *http.Request) (service.Actor, bool) {
	uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
	role, _ := utils.GetString(r.Context(), middleware.CtxRole)
	if uid == "" {
		return service.Actor{}, false
	}
	return service.Actor{ID: uid, Role: role}, true
}
