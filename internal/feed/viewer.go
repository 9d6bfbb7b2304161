package feed

// Viewer is the authenticated identity a request is evaluated for.
// The zero value is the anonymous viewer.
type Viewer struct {
	ID string
}

// Anonymous is the viewer of unauthenticated requests
var Anonymous = Viewer{}

func (v Viewer) IsAnonymous() bool {
	return v.ID == ""
}

// Is reports whether the viewer is the user with the given ID.
// It is always false for the anonymous viewer.
func (v Viewer) Is(userID string) bool {
	return !v.IsAnonymous() && v.ID == userID
}
