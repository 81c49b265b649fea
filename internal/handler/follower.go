package handler

import (
	"net/http"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
	"moments_api/internal/service"
	"moments_api/internal/transport/http/middleware"
)

type FollowerHandler struct {
	base
	followerService *service.FollowerService
}

func NewFollowerHandler(followerService *service.FollowerService, opts Options) *FollowerHandler {
	return &FollowerHandler{
		base:            base{opts: opts},
		followerService: followerService,
	}
}

// List handles GET /followers with optional owner and followed filters.
func (h *FollowerHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := h.listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := model.FollowerQuery{ListOptions: opts}
	if q.OwnerID, err = queryID(r, "owner"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.FollowedID, err = queryID(r, "followed"); err != nil {
		h.writeError(w, r, err)
		return
	}

	followers, total, err := h.followerService.List(r.Context(), middleware.ViewerFromContext(r.Context()), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writePage(w, r, opts, followers, total)
}

// Create handles POST /followers
func (h *FollowerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFollowerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	follower, err := h.followerService.Create(r.Context(), middleware.ViewerFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, follower)
}

// Get handles GET /followers/{id}
func (h *FollowerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	follower, err := h.followerService.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, follower)
}

// Delete handles DELETE /followers/{id}
func (h *FollowerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.followerService.Delete(r.Context(), middleware.ViewerFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}
