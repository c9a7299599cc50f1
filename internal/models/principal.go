package models

// Principal is the identity resolved from a valid access token
// It lives in request context only and is never shared between requests
type Principal struct {
	UserID      int64
	Login       string
	Role        Role
	Authorities []string
}

func NewPrincipal(u User) Principal {
	return Principal{
		UserID:      u.ID,
		Login:       u.Login,
		Role:        u.Role,
		Authorities: []string{u.Role.String()},
	}
}

func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
