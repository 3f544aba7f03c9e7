package models

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           Role
}

func (a Actor) Scope() Scope {
	return Scope{OrganizationID: a.OrganizationID}
}

// Scope carries the tenant filter every repository call must apply.
type Scope struct {
	OrganizationID string
}
