package model

// Viewer is the identity making the current request. The zero value is the
// anonymous viewer.
type Viewer struct {
	UserID        int64
	Authenticated bool
}

// Anonymous is the viewer of unauthenticated requests.
var Anonymous = Viewer{}

// NewViewer returns an authenticated viewer for the given user.
func NewViewer(userID int64) Viewer {
	return Viewer{UserID: userID, Authenticated: true}
}

// Owns reports whether the viewer is the authenticated owner of an entity.
func (v Viewer) Owns(ownerID int64) bool {
	return v.Authenticated && v.UserID == ownerID
}
