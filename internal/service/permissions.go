package service

import (
	"errors"

	"github.com/Almer24/it-ticketing-system/internal/models"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrSelfDelete = errors.New("cannot delete your own account")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Actor is the authenticated caller as resolved from the session token.
type Actor struct {
	ID   string
	Role string
}

// Capabilities is the caller's permission set, resolved once per request
// and consumed uniformly by every operation. Role strings never leak
// past this point.
type Capabilities struct {
	actorID string

	// ManageTickets: change status/assignee on any ticket.
	ManageTickets bool
	// ManageUsers: create/update/delete user accounts.
	ManageUsers bool
	// ViewAll: see tickets of every creator; without it, listing and
	// lookups are scoped to the caller's own tickets.
	ViewAll bool
}

// ResolveCapabilities maps a role to its permission set. Whether "it"
// counts as staff is a deployment choice (itCanManage).
func ResolveCapabilities(actor Actor, itCanManage bool) Capabilities {
	staff := actor.Role == models.RoleAdmin || (actor.Role == models.RoleIT && itCanManage)
	return Capabilities{
		actorID:       actor.ID,
		ManageTickets: staff,
		ManageUsers:   staff,
		ViewAll:       staff,
	}
}

func (c Capabilities) CanViewTicket(t *models.Ticket) bool {
	return c.ViewAll || t.CreatedBy == c.actorID
}

// CanModifyTicket covers notes, photo attachment and deletion: the
// creator keeps those rights while the ticket is open, staff always.
func (c Capabilities) CanModifyTicket(t *models.Ticket) bool {
	return c.ManageTickets || t.CreatedBy == c.actorID
}
