package handler

import (
	"net/http"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
	"moments_api/internal/service"
	"moments_api/internal/transport/http/middleware"
)

type CommentHandler struct {
	base
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService, opts Options) *CommentHandler {
	return &CommentHandler{
		base:           base{opts: opts},
		commentService: commentService,
	}
}

// List handles GET /comments, optionally filtered by ?post=
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := h.listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := model.CommentQuery{ListOptions: opts}
	if q.PostID, err = queryID(r, "post"); err != nil {
		h.writeError(w, r, err)
		return
	}

	comments, total, err := h.commentService.List(r.Context(), middleware.ViewerFromContext(r.Context()), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writePage(w, r, opts, comments, total)
}

// Create handles POST /comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.commentService.Create(r.Context(), middleware.ViewerFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Get handles GET /comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.commentService.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Update handles PUT /comments/{id}. Only the content can change.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req model.UpdateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.commentService.Update(r.Context(), middleware.ViewerFromContext(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.commentService.Delete(r.Context(), middleware.ViewerFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}
