package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role of an authenticated user
type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
)

// ParseRole converts a raw claim value into a known role
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleProfessional:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsPartyTo reports whether the actor may act on the booking in their role:
// clients own the booking, professionals own the booked service.
func (a Actor) IsPartyTo(b *Booking) bool {
	switch a.Role {
	case RoleClient:
		return b.ClientID == a.ID
	case RoleProfessional:
		return b.ProfessionalID == a.ID
	}
	return false
}

// IsParticipant reports whether the actor is either side of the booking, regardless of role
func (a Actor) IsParticipant(b *Booking) bool {
	return b.ClientID == a.ID || b.ProfessionalID == a.ID
}
