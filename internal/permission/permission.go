// Package permission implements the single authorization rule shared by every
// resource: reads are always allowed, writes only by the owning user.
package permission

import (
	"net/http"

	"moments_api/internal/model"
)

// Action is the kind of access requested on an existing entity.
type Action int

const (
	Read Action = iota
	Update
	Delete
)

// ActionForMethod maps an HTTP method to the access it requests. GET, HEAD
// and OPTIONS only read state.
func ActionForMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	case http.MethodDelete:
		return Delete
	}
	return Update
}

// Check permits reads for anyone and other actions only for the owner.
func Check(action Action, viewer model.Viewer, ownerID int64) error {
	if action == Read {
		return nil
	}
	if !viewer.Authenticated {
		return model.ErrNotAuthenticated
	}
	if viewer.UserID != ownerID {
		return model.ErrForbidden
	}
	return nil
}

// RequireAuthenticated gates creation of new entities.
func RequireAuthenticated(viewer model.Viewer) error {
	if !viewer.Authenticated {
		return model.ErrNotAuthenticated
	}
	return nil
}
