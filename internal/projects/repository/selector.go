package repository

// OwnerSource reports the signed-in owner, or "" when nobody is signed in.
type OwnerSource interface {
	OwnerID() string
}

// Selector picks the authoritative backend: hosted while an owner is signed in,
// the device store otherwise. Never both.
type Selector struct {
	local  Backend
	hosted Backend
	owner  OwnerSource
}

// NewSelector builds a selector. hosted may be nil when no hosted database is configured.
func NewSelector(local, hosted Backend, owner OwnerSource) *Selector {
	return &Selector{local: local, hosted: hosted, owner: owner}
}

// Active returns the backend to use and the owner to scope it by.
func (s *Selector) Active() (Backend, string) {
	if s.hosted != nil && s.owner != nil {
		if id := s.owner.OwnerID(); id != "" {
			return s.hosted, id
		}
	}
	return s.local, ""
}

// Name is "hosted" or "local".
func (s *Selector) Name() string {
	if _, owner := s.Active(); owner != "" {
		return "hosted"
	}
	return "local"
}
