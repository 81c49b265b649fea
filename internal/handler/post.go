package handler

import (
	"net/http"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
	"moments_api/internal/permission"
	"moments_api/internal/service"
	"moments_api/internal/transport/http/middleware"
)

type PostHandler struct {
	base
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService, opts Options) *PostHandler {
	return &PostHandler{
		base:        base{opts: opts},
		postService: postService,
	}
}

// List handles GET /posts
// Supports profile, liked_by_profile and followed_by_profile filters.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := h.listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := model.PostQuery{ListOptions: opts}
	if q.ProfileID, err = queryID(r, "profile"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.LikedByProfile, err = queryID(r, "liked_by_profile"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.FollowedByProfile, err = queryID(r, "followed_by_profile"); err != nil {
		h.writeError(w, r, err)
		return
	}

	posts, total, err := h.postService.List(r.Context(), middleware.ViewerFromContext(r.Context()), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writePage(w, r, opts, posts, total)
}

// Create handles POST /posts
// Accepts JSON or a multipart form with an optional "image" file.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromContext(r.Context())
	if !viewer.Authenticated {
		// Reject before reading a possibly large upload.
		h.writeError(w, r, model.ErrNotAuthenticated)
		return
	}

	req, image, err := h.decodePost(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.postService.Create(r.Context(), viewer, req, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Get handles GET /posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.postService.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update handles PUT /posts/{id}
// Ownership is checked before the body is read.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	viewer := middleware.ViewerFromContext(r.Context())
	if err := h.postService.Authorize(r.Context(), viewer, id, permission.ActionForMethod(r.Method)); err != nil {
		h.writeError(w, r, err)
		return
	}

	req, image, err := h.decodePost(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.postService.Update(r.Context(), viewer, id, req, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.postService.Delete(r.Context(), middleware.ViewerFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PostHandler) decodePost(w http.ResponseWriter, r *http.Request) (*model.PostRequest, *model.ImageUpload, error) {
	if !isMultipart(r) {
		var req model.PostRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	if err := parseMultipart(w, r); err != nil {
		return nil, nil, err
	}
	req := &model.PostRequest{
		Content:     formString(r, "content"),
		ImageFilter: formString(r, "image_filter"),
	}
	if title := formString(r, "title"); title != nil {
		req.Title = *title
	}

	image, err := formImage(r)
	if err != nil {
		return nil, nil, err
	}
	return req, image, nil
}
