package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Almer24/it-ticketing-system/internal/config"
	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/repository"
	"github.com/Almer24/it-ticketing-system/internal/storage"
)

// TicketService owns the ticket lifecycle: creation with number allocation,
// status transitions, notes, assignment, deletion, and access scoping.
type TicketService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	photos  storage.PhotoStore
	log     zerolog.Logger

	itCanManage bool
	equipment   map[string]struct{}
}

func NewTicketService(
	tickets repository.TicketRepository,
	users repository.UserRepository,
	photos storage.PhotoStore,
	log zerolog.Logger,
	cfg config.Config,
) *TicketService {
	eq := map[string]struct{}{
		models.EquipmentPC:     {},
		models.EquipmentLaptop: {},
		models.EquipmentOther:  {},
	}
	for _, e := range cfg.ExtraEquipmentTypes {
		eq[e] = struct{}{}
	}
	return &TicketService{
		tickets:     tickets,
		users:       users,
		photos:      photos,
		log:         log,
		itCanManage: cfg.ITCanManage,
		equipment:   eq,
	}
}

func (s *TicketService) Capabilities(a Actor) Capabilities {
	return ResolveCapabilities(a, s.itCanManage)
}

// -----------------------------------------------------------------------------
// Create
// -----------------------------------------------------------------------------

type CreateTicketInput struct {
	Department         string
	EquipmentType      string
	ProblemDescription string
	IssueDate          time.Time
	Priority           string
	PhotoURL           string
	PhotoKey           string
}

// Create validates input, forces the department for non-staff callers,
// and inserts the ticket in Pending together with its first audit row.
// The ticket number is allocated inside the same transaction.
func (s *TicketService) Create(ctx context.Context, actor Actor, in CreateTicketInput) (*models.Ticket, error) {
	creator, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, repository.ErrNotFound
	}
	caps := s.Capabilities(actor)

	fields := map[string]string{}
	in.ProblemDescription = strings.TrimSpace(in.ProblemDescription)
	if in.ProblemDescription == "" {
		fields["problemDescription"] = "problem description is required"
	}
	if _, ok := s.equipment[strings.TrimSpace(in.EquipmentType)]; !ok {
		fields["equipmentType"] = "unknown equipment type"
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		fields["priority"] = "priority must be Low, Medium or High"
	}

	// Non-staff callers always get their own department, whatever they send.
	if caps.ManageTickets {
		in.Department = strings.TrimSpace(in.Department)
		if in.Department == "" {
			fields["department"] = "department is required"
		}
	} else {
		in.Department = creator.Department
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if in.IssueDate.IsZero() {
		in.IssueDate = time.Now()
	}

	t := &models.Ticket{
		Department:         in.Department,
		EquipmentType:      strings.TrimSpace(in.EquipmentType),
		ProblemDescription: in.ProblemDescription,
		IssueDate:          in.IssueDate,
		PhotoURL:           in.PhotoURL,
		PhotoKey:           in.PhotoKey,
		Status:             models.StatusPending,
		Priority:           in.Priority,
		CreatedBy:          creator.ID,
	}
	first := &models.TicketUpdate{
		UserID:     creator.ID,
		UpdateType: models.UpdateStatusChange,
		NewValue:   models.StatusPending,
		Notes:      "Ticket created",
	}
	if err := s.tickets.Create(ctx, t, first); err != nil {
		return nil, err
	}
	t.Updates = []models.TicketUpdate{*first}
	return t, nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Get returns the ticket with history. Tickets outside the caller's scope
// are reported as not found, indistinguishable from absent ones.
func (s *TicketService) Get(ctx context.Context, actor Actor, id string) (*models.Ticket, error) {
	t, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || !s.Capabilities(actor).CanViewTicket(t) {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

// List scopes non-staff callers to their own tickets regardless of the
// filter they supply; the constraint is applied in SQL, not post-hoc.
func (s *TicketService) List(ctx context.Context, actor Actor, f repository.TicketFilter) ([]models.Ticket, int, error) {
	if !s.Capabilities(actor).ViewAll {
		f.CreatedBy = actor.ID
	}
	return s.tickets.List(ctx, f)
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

// ChangeStatus moves the ticket to status and appends the audit row
// atomically. Closed tickets reject every transition.
func (s *TicketService) ChangeStatus(ctx context.Context, actor Actor, ticketID, status, notes string) (*models.Ticket, error) {
	if !s.Capabilities(actor).ManageTickets {
		return nil, ErrForbidden
	}
	if !models.ValidStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "invalid status"}}
	}

	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, repository.ErrNotFound
	}
	if t.Closed() {
		return nil, repository.ErrTicketClosed
	}

	upd := &models.TicketUpdate{
		TicketID:   t.ID,
		UserID:     actor.ID,
		UpdateType: models.UpdateStatusChange,
		OldValue:   t.Status,
		NewValue:   status,
		Notes:      notes,
	}
	if err := s.tickets.SetStatus(ctx, t.ID, status, upd); err != nil {
		return nil, err
	}
	return s.tickets.Get(ctx, t.ID)
}

// AddNote is open to the ticket's creator as well as staff, while the
// ticket is not Closed.
func (s *TicketService) AddNote(ctx context.Context, actor Actor, ticketID, notes string) (*models.Ticket, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, &ValidationError{Fields: map[string]string{"notes": "notes are required"}}
	}

	t, err := s.visibleModifiable(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	upd := &models.TicketUpdate{
		TicketID:   t.ID,
		UserID:     actor.ID,
		UpdateType: models.UpdateNote,
		Notes:      notes,
	}
	if err := s.tickets.AddUpdate(ctx, upd); err != nil {
		return nil, err
	}
	return s.tickets.Get(ctx, t.ID)
}

// Assign sets or clears the assignee and records an assignment audit row.
func (s *TicketService) Assign(ctx context.Context, actor Actor, ticketID, assignee string) (*models.Ticket, error) {
	if !s.Capabilities(actor).ManageTickets {
		return nil, ErrForbidden
	}
	if assignee != "" {
		u, err := s.users.GetByID(ctx, assignee)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, &ValidationError{Fields: map[string]string{"assignedTo": "no such user"}}
		}
	}

	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, repository.ErrNotFound
	}
	if t.Closed() {
		return nil, repository.ErrTicketClosed
	}

	upd := &models.TicketUpdate{
		TicketID:   t.ID,
		UserID:     actor.ID,
		UpdateType: models.UpdateAssignment,
		OldValue:   t.AssignedTo,
		NewValue:   assignee,
	}
	if err := s.tickets.SetAssignee(ctx, t.ID, assignee, upd); err != nil {
		return nil, err
	}
	return s.tickets.Get(ctx, t.ID)
}

// AttachPhoto records an uploaded photo on the ticket. A replaced photo's
// old object is removed best-effort.
func (s *TicketService) AttachPhoto(ctx context.Context, actor Actor, ticketID, url, key string) (*models.Ticket, error) {
	t, err := s.visibleModifiable(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	oldKey := t.PhotoKey

	upd := &models.TicketUpdate{
		TicketID:   t.ID,
		UserID:     actor.ID,
		UpdateType: models.UpdateNote,
		Notes:      "Photo attached",
	}
	if err := s.tickets.SetPhoto(ctx, t.ID, url, key, upd); err != nil {
		return nil, err
	}
	s.removePhoto(ctx, t.ID, oldKey)
	return s.tickets.Get(ctx, t.ID)
}

// Delete removes the ticket and its history (cascade), then the photo
// object. The file removal never fails the logical deletion.
func (s *TicketService) Delete(ctx context.Context, actor Actor, ticketID string) error {
	t, err := s.visibleModifiable(ctx, actor, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, t.ID); err != nil {
		return err
	}
	s.removePhoto(ctx, t.ID, t.PhotoKey)
	return nil
}

// visibleModifiable loads the ticket and applies the shared guards for
// creator-or-staff mutations: scope (as not-found), then the Closed check.
func (s *TicketService) visibleModifiable(ctx context.Context, actor Actor, ticketID string) (*models.Ticket, error) {
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	caps := s.Capabilities(actor)
	if t == nil || !caps.CanViewTicket(t) {
		return nil, repository.ErrNotFound
	}
	if !caps.CanModifyTicket(t) {
		return nil, ErrForbidden
	}
	if t.Closed() {
		return nil, repository.ErrTicketClosed
	}
	return t, nil
}

func (s *TicketService) removePhoto(ctx context.Context, ticketID, key string) {
	if key == "" || s.photos == nil {
		return
	}
	if err := s.photos.Remove(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("ticket", ticketID).Str("key", key).Msg("photo removal failed")
	}
}
