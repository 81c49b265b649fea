package handler

import (
	"net/http"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
	"moments_api/internal/permission"
	"moments_api/internal/service"
	"moments_api/internal/transport/http/middleware"
)

type ProfileHandler struct {
	base
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService, opts Options) *ProfileHandler {
	return &ProfileHandler{
		base:           base{opts: opts},
		profileService: profileService,
	}
}

// List handles GET /profiles
// Supports follows_profile and followed_by_profile filters.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := h.listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := model.ProfileQuery{ListOptions: opts}
	if q.FollowsProfile, err = queryID(r, "follows_profile"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.FollowedByProfile, err = queryID(r, "followed_by_profile"); err != nil {
		h.writeError(w, r, err)
		return
	}

	profiles, total, err := h.profileService.List(r.Context(), middleware.ViewerFromContext(r.Context()), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writePage(w, r, opts, profiles, total)
}

// Get handles GET /profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.profileService.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Update handles PUT /profiles/{id}
// Accepts JSON or a multipart form with an optional "image" file.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	viewer := middleware.ViewerFromContext(r.Context())
	if err := h.profileService.Authorize(r.Context(), viewer, id, permission.ActionForMethod(r.Method)); err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		req   model.UpdateProfileRequest
		image *model.ImageUpload
	)
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			h.writeError(w, r, err)
			return
		}
		req.Name = formString(r, "name")
		req.Content = formString(r, "content")
		if image, err = formImage(r); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.profileService.Update(r.Context(), viewer, id, &req, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}
