package model

import "time"

// User is the authenticated identity.
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	IsVerified bool       `json:"isVerified"`
	Role       string     `json:"role"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// UserPatch is a partial User. Nil fields are left unchanged.
type UserPatch struct {
	Email      *string
	FirstName  *string
	LastName   *string
	IsVerified *bool
	Role       *string
}

// Apply returns u with every non-nil field of p written over it. Name is
// recomputed whenever a name component changes.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.FirstName != nil || p.LastName != nil {
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		u.Name = u.FirstName + " " + u.LastName
	}
	return u
}
