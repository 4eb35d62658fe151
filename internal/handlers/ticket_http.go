package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Almer24/it-ticketing-system/internal/repository"
	"github.com/Almer24/it-ticketing-system/internal/service"
	"github.com/Almer24/it-ticketing-system/internal/storage"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

const maxPhotoBytes = 5 << 20 // 5 MiB

var photoContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// TicketHTTP wires the ticket endpoints to the lifecycle service.
type TicketHTTP struct {
	svc    *service.TicketService
	photos storage.PhotoStore
	log    zerolog.Logger
}

func NewTicketHTTP(svc *service.TicketService, photos storage.PhotoStore, log zerolog.Logger) *TicketHTTP {
	return &TicketHTTP{svc: svc, photos: photos, log: log}
}

// -----------------------------------------------------------------------------
// GET /api/tickets?q=&status=&priority=&department=&createdBy=&sort=&order=&limit=&offset=
// -----------------------------------------------------------------------------
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		qv := r.URL.Query()
		f := repository.TicketFilter{
			Q:          strings.TrimSpace(qv.Get("q")),
			Status:     strings.TrimSpace(qv.Get("status")),
			Priority:   strings.TrimSpace(qv.Get("priority")),
			Department: strings.TrimSpace(qv.Get("department")),
			CreatedBy:  strings.TrimSpace(qv.Get("createdBy")),
			Limit:      utils.QueryInt(qv, "limit", 20),
			Offset:     utils.QueryInt(qv, "offset", 0),
			Sort:       qv.Get("sort"),
			Order:      qv.Get("order"),
		}

		items, total, err := h.svc.List(r.Context(), actor, f)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets (JSON body, or multipart with an optional "photo" part)
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Department         string `json:"department"`
		EquipmentType      string `json:"equipmentType" validate:"required"`
		ProblemDescription string `json:"problemDescription" validate:"required,max=5000"`
		IssueDate          string `json:"issueDate"`
		Priority           string `json:"priority"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		var in inDTO
		var photoFile multipart.File
		var photoHeader *multipart.FileHeader

		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(maxPhotoBytes + 1<<20); err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid multipart form")
				return
			}
			in.Department = r.FormValue("department")
			in.EquipmentType = r.FormValue("equipmentType")
			in.ProblemDescription = r.FormValue("problemDescription")
			in.IssueDate = r.FormValue("issueDate")
			in.Priority = r.FormValue("priority")

			f, fh, err := r.FormFile("photo")
			if err == nil {
				defer f.Close()
				photoFile, photoHeader = f, fh
			} else if err != http.ErrMissingFile {
				utils.Error(w, http.StatusBadRequest, "invalid photo upload")
				return
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid json")
				return
			}
		}

		if fields := utils.Validate(in); fields != nil {
			utils.Fail(w, "validation failed", fields)
			return
		}

		var issueDate time.Time
		if s := strings.TrimSpace(in.IssueDate); s != "" {
			var err error
			issueDate, err = time.Parse(time.RFC3339, s)
			if err != nil {
				utils.Fail(w, "validation failed", map[string]string{"issueDate": "must be an RFC 3339 timestamp"})
				return
			}
		}

		var photoURL, photoKey string
		if photoFile != nil {
			url, key, ok := h.uploadPhoto(w, r, photoFile, photoHeader)
			if !ok {
				return
			}
			photoURL, photoKey = url, key
		}

		t, err := h.svc.Create(r.Context(), actor, service.CreateTicketInput{
			Department:         in.Department,
			EquipmentType:      in.EquipmentType,
			ProblemDescription: in.ProblemDescription,
			IssueDate:          issueDate,
			Priority:           in.Priority,
			PhotoURL:           photoURL,
			PhotoKey:           photoKey,
		})
		if err != nil {
			// Don't leave the uploaded object orphaned.
			if photoKey != "" && h.photos != nil {
				if rmErr := h.photos.Remove(r.Context(), photoKey); rmErr != nil {
					h.log.Warn().Err(rmErr).Str("key", photoKey).Msg("orphan photo removal failed")
				}
			}
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, t)
	}
}

// -----------------------------------------------------------------------------
// GET /api/tickets/{id}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		t, err := h.svc.Get(r.Context(), actor, id)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/tickets/{id}/status
// -----------------------------------------------------------------------------
func (h *TicketHTTP) ChangeStatus() http.HandlerFunc {
	type inDTO struct {
		Status string `json:"status" validate:"required"`
		Notes  string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if fields := utils.Validate(in); fields != nil {
			utils.Fail(w, "validation failed", fields)
			return
		}

		t, err := h.svc.ChangeStatus(r.Context(), actor, chi.URLParam(r, "id"), in.Status, strings.TrimSpace(in.Notes))
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/tickets/{id}/assignee
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Assign() http.HandlerFunc {
	type inDTO struct {
		AssignedTo string `json:"assignedTo"` // empty clears the assignment
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		t, err := h.svc.Assign(r.Context(), actor, chi.URLParam(r, "id"), strings.TrimSpace(in.AssignedTo))
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{id}/notes
// -----------------------------------------------------------------------------
func (h *TicketHTTP) AddNote() http.HandlerFunc {
	type inDTO struct {
		Notes string `json:"notes" validate:"required,max=5000"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if fields := utils.Validate(in); fields != nil {
			utils.Fail(w, "validation failed", fields)
			return
		}

		t, err := h.svc.AddNote(r.Context(), actor, chi.URLParam(r, "id"), in.Notes)
		if err != nil {
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{id}/photo (multipart "photo" part)
// -----------------------------------------------------------------------------
func (h *TicketHTTP) UploadPhoto() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if err := r.ParseMultipartForm(maxPhotoBytes + 1<<20); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		f, fh, err := r.FormFile("photo")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "photo file is required")
			return
		}
		defer f.Close()

		url, key, ok := h.uploadPhoto(w, r, f, fh)
		if !ok {
			return
		}
		t, err := h.svc.AttachPhoto(r.Context(), actor, chi.URLParam(r, "id"), url, key)
		if err != nil {
			if rmErr := h.photos.Remove(r.Context(), key); rmErr != nil {
				h.log.Warn().Err(rmErr).Str("key", key).Msg("orphan photo removal failed")
			}
			respondError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// DELETE /api/tickets/{id}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Delete() http.HandlerFunc {
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

// uploadPhoto validates and stores the file. On failure it writes the
// error response and returns ok=false.
func (h *TicketHTTP) uploadPhoto(w http.ResponseWriter, r *http.Request, f multipart.File, fh *multipart.FileHeader) (url, key string, ok bool) {
	if h.photos == nil {
		utils.Error(w, http.StatusServiceUnavailable, "photo storage is not configured")
		return "", "", false
	}
	if fh.Size > maxPhotoBytes {
		utils.Fail(w, "validation failed", map[string]string{"photo": "photo must be 5 MiB or smaller"})
		return "", "", false
	}
	ct := fh.Header.Get("Content-Type")
	if _, allowed := photoContentTypes[ct]; !allowed {
		utils.Fail(w, "validation failed", map[string]string{"photo": "photo must be JPEG, PNG or WebP"})
		return "", "", false
	}

	url, key, err := h.photos.Put(r.Context(), f, fh.Size, ct, fh.Filename)
	if err != nil {
		h.log.Error().Err(err).Msg("photo upload failed")
		utils.Error(w, http.StatusInternalServerError, "photo upload failed")
		return "", "", false
	}
	return url, key, true
}
