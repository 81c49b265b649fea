package handler

import (
	"net/http"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
	"moments_api/internal/service"
	"moments_api/internal/transport/http/middleware"
)

type LikeHandler struct {
	base
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService, opts Options) *LikeHandler {
	return &LikeHandler{
		base:        base{opts: opts},
		likeService: likeService,
	}
}

// List handles GET /likes with optional post and owner filters.
func (h *LikeHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := h.listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := model.LikeQuery{ListOptions: opts}
	if q.PostID, err = queryID(r, "post"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.OwnerID, err = queryID(r, "owner"); err != nil {
		h.writeError(w, r, err)
		return
	}

	likes, total, err := h.likeService.List(r.Context(), middleware.ViewerFromContext(r.Context()), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writePage(w, r, opts, likes, total)
}

// Create handles POST /likes
func (h *LikeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLikeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	like, err := h.likeService.Create(r.Context(), middleware.ViewerFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, like)
}

// Get handles GET /likes/{id}
func (h *LikeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	like, err := h.likeService.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, like)
}

// Delete handles DELETE /likes/{id}
func (h *LikeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.likeService.Delete(r.Context(), middleware.ViewerFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}
