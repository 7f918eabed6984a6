package core

// AnonymousDisplayName is stored as author name when the viewer has no display name.
const AnonymousDisplayName = "Anonymous"

// Viewer is the acting user. It is passed explicitly into every operation; the zero value is
// the unauthenticated viewer.
type Viewer struct {
	ID          UserID
	DisplayName string
	AvatarURL   string
}

// Anonymous returns the unauthenticated viewer.
func Anonymous() Viewer {
	return Viewer{}
}

// IsAuthenticated reports whether the viewer has an identity.
func (v Viewer) IsAuthenticated() bool {
	return v.ID != ""
}

// RequireAuthenticated returns ErrAuthenticationRequired for the anonymous viewer.
func (v Viewer) RequireAuthenticated() error {
	if !v.IsAuthenticated() {
		return ErrAuthenticationRequired
	}

	return nil
}

// AuthorName is the display name captured into reviews written by v.
func (v Viewer) AuthorName() string {
	if v.DisplayName == "" {
		return AnonymousDisplayName
	}

	return v.DisplayName
}
