package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Almer24/it-ticketing-system/internal/service"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

type UserHTTP struct {
	svc *service.UserService
}

func NewUserHTTP(svc *service.UserService) *UserHTTP {
	return &UserHTTP{svc: svc}
}

// GET /api/users?q=&role=&limit=&offset=
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		qv := r.URL.Query()
		users, total, err := h.svc.List(r.Context(), actor,
			qv.Get("q"), qv.Get("role"),
			utils.QueryInt(qv, "limit", 20), utils.QueryInt(qv, "offset", 0))
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": users, "total": total})
	}
}

// GET /api/users/{id}
func (h *UserHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		u, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

type userDTO struct {
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password"`
	Department string `json:"department" validate:"max=128"`
	Role       string `json:"role" validate:"required,oneof=user admin it"`
}

// POST /api/users
func (h *UserHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		var in userDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if fields := utils.Validate(in); fields != nil {
			utils.Fail(w, "validation failed", fields)
			return
		}
		u, err := h.svc.Create(r.Context(), actor, service.UserInput{
			Username:   in.Username,
			Email:      in.Email,
			Password:   in.Password,
			Department: in.Department,
			Role:       in.Role,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// PUT /api/users/{id}
func (h *UserHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		var in userDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if fields := utils.Validate(in); fields != nil {
			utils.Fail(w, "validation failed", fields)
			return
		}
		u, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "id"), service.UserInput{
			Username:   in.Username,
			Email:      in.Email,
			Password:   in.Password,
			Department: in.Department,
			Role:       in.Role,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// DELETE /api/users/{id}
func (h *UserHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if err := h.svc.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
